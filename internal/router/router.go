package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "med-scheduler/internal/adapters/storage/memory"
	pg "med-scheduler/internal/adapters/storage/postgres"
	"med-scheduler/internal/domain/intakes"
	"med-scheduler/internal/domain/medications"
	"med-scheduler/internal/domain/schedule"
	"med-scheduler/internal/middleware"
	"med-scheduler/internal/platform/logger"
	"med-scheduler/internal/ports/auth"
	"med-scheduler/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "med-scheduler/docs" // registro OpenAPI generado (swag)
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev con X-Debug-User-ID)

	// Opcional: si viene, usa Postgres. Si no, intenta DB_DSN y cae a in-memory.
	DB *sql.DB

	// Opcional: gate de capabilities por plan. Nil = sin gating (dev).
	Capabilities capabilities.Resolver

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		medRepo    medications.Repository
		doseRepo   medications.DoseRepository
		skipRepo   medications.SkipRepository
		intakeRepo intakes.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres no disponible, usando in-memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		medRepo = pg.NewMedicationsRepo(db)
		doseRepo = pg.NewDosesRepo(db)
		skipRepo = pg.NewSkipsRepo(db)
		intakeRepo = pg.NewIntakesRepo(db)
		log.Info("storage: postgres", nil)
	} else {
		medRepo = mem.NewMedicationRepo()
		doseRepo = mem.NewDoseRepo()
		skipRepo = mem.NewSkipRepo()
		intakeRepo = mem.NewIntakeRepo()
		log.Info("storage: in-memory", nil)
	}

	// Services por módulo
	medsSvc := medications.NewService(medRepo, doseRepo, skipRepo)
	scheduleSvc := schedule.NewService(medRepo, doseRepo, skipRepo)
	intakesSvc := intakes.NewService(intakeRepo, medRepo)

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	schedule.RegisterRoutes(r, scheduleSvc, medsSvc)
	intakes.RegisterRoutes(r, intakesSvc, medsSvc, opts.Capabilities)

	return r
}
