package router

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	mem "pet-reunite/internal/adapters/storage/memory"
	pg "pet-reunite/internal/adapters/storage/postgres"
	"pet-reunite/internal/domain/admin"
	"pet-reunite/internal/domain/businesses"
	"pet-reunite/internal/domain/campaigns"
	"pet-reunite/internal/domain/comments"
	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/domain/location"
	"pet-reunite/internal/domain/matching"
	"pet-reunite/internal/domain/moderation"
	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/domain/profiles"
	"pet-reunite/internal/domain/support"
	"pet-reunite/internal/domain/uploads"
	"pet-reunite/internal/middleware"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/auth"
	"pet-reunite/internal/ports/embeddings"
	"pet-reunite/internal/ports/geocoding"
	"pet-reunite/internal/ports/media"
	"pet-reunite/internal/ports/notify"
)

type Options struct {
	Log          logger.Logger
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Adaptadores externos; nil = funcionalidad deshabilitada.
	Geocoder  geocoding.Geocoder
	Embedder  embeddings.Embedder
	Uploader  media.Uploader
	Publisher notify.Publisher

	MatchThreshold float64
	PublicBaseURL  string
	QRBaseURL      string
}

type repos struct {
	pets       pets.Repository
	embeddings matching.Store
	profiles   profiles.Repository
	points     gamification.Repository
	comments   comments.Repository
	businesses businesses.Repository
	ratings    businesses.RatingRepository
	campaigns  campaigns.Repository
	reports    moderation.Repository
	tickets    support.Repository
	audit      admin.AuditRepository
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		x := pg.Sqlx(db)
		return repos{
			pets:       pg.NewPetsRepo(db),
			embeddings: pg.NewEmbeddingStore(db),
			profiles:   pg.NewProfilesRepo(x),
			points:     pg.NewPointsRepo(x),
			comments:   pg.NewCommentsRepo(x),
			businesses: pg.NewBusinessesRepo(x),
			ratings:    pg.NewRatingsRepo(x),
			campaigns:  pg.NewCampaignsRepo(x),
			reports:    pg.NewReportsRepo(x),
			tickets:    pg.NewTicketsRepo(x),
			audit:      pg.NewAuditRepo(x),
		}
	}

	petRepo := mem.NewPetRepo()
	ratingRepo := mem.NewRatingRepo()
	return repos{
		pets:       petRepo,
		embeddings: mem.NewEmbeddingStore(petRepo),
		profiles:   mem.NewProfileRepo(),
		points:     mem.NewPointsRepo(),
		comments:   mem.NewCommentRepo(),
		businesses: mem.NewBusinessRepo(ratingRepo),
		ratings:    ratingRepo,
		campaigns:  mem.NewCampaignRepo(),
		reports:    mem.NewReportRepo(),
		tickets:    mem.NewTicketRepo(),
		audit:      mem.NewAuditRepo(),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = notify.Nop{}
	}

	rp := newRepos(opts.DB)

	// Services por módulo
	adminSvc := admin.NewService(rp.audit, admin.Sources{}, log.With(map[string]any{"module": "admin"}))
	profilesSvc := profiles.NewService(rp.profiles)
	pointsSvc := gamification.NewService(rp.points)

	matchingSvc := matching.NewService(opts.Embedder, rp.embeddings, rp.pets, publisher,
		log.With(map[string]any{"module": "matching"}), opts.MatchThreshold)

	petDeps := pets.Deps{
		Points:        pointsSvc,
		Publisher:     publisher,
		Log:           log.With(map[string]any{"module": "pets"}),
		PublicBaseURL: opts.PublicBaseURL,
		QRBaseURL:     opts.QRBaseURL,
	}
	if matchingSvc.Enabled() {
		petDeps.Indexer = matchingSvc
	}
	petsSvc := pets.NewService(rp.pets, petDeps)

	commentsSvc := comments.NewService(rp.comments, petsSvc, pointsSvc, publisher,
		log.With(map[string]any{"module": "comments"}))
	businessesSvc := businesses.NewService(rp.businesses, rp.ratings, pointsSvc, adminSvc,
		log.With(map[string]any{"module": "businesses"}))
	campaignsSvc := campaigns.NewService(rp.campaigns, pointsSvc, adminSvc,
		log.With(map[string]any{"module": "campaigns"}))
	supportSvc := support.NewService(rp.tickets, publisher, adminSvc,
		log.With(map[string]any{"module": "support"}))
	locationSvc := location.NewService(opts.Geocoder)
	uploadsSvc := uploads.NewService(opts.Uploader)

	removers := moderation.Removers{
		moderation.TargetPet: func(ctx context.Context, id string) error {
			return petsSvc.Delete(ctx, id, pets.Actor{Admin: true})
		},
		moderation.TargetComment:  commentsSvc.Remove,
		moderation.TargetBusiness: businessesSvc.Remove,
		moderation.TargetCampaign: campaignsSvc.Remove,
		moderation.TargetUser: func(ctx context.Context, id string) error {
			_, err := profilesSvc.SetBanned(ctx, id, true)
			return err
		},
	}
	moderationSvc := moderation.NewService(rp.reports, removers, pointsSvc, adminSvc,
		log.With(map[string]any{"module": "moderation"}))

	adminSvc.SetSources(admin.Sources{
		Pets:       petsSvc,
		Reports:    moderationSvc,
		Tickets:    supportSvc,
		Businesses: businessesSvc,
		Users:      profilesSvc,
		Campaigns:  campaignsSvc,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	r.Use(middleware.ProfileRole(profilesSvc))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, profilesSvc)
	matching.RegisterRoutes(r, matchingSvc)
	comments.RegisterRoutes(r, commentsSvc, profilesSvc)
	profiles.RegisterRoutes(r, profilesSvc, adminSvc)
	gamification.RegisterRoutes(r, pointsSvc, profilesSvc)
	businesses.RegisterRoutes(r, businessesSvc, profilesSvc)
	campaigns.RegisterRoutes(r, campaignsSvc, profilesSvc)
	moderation.RegisterRoutes(r, moderationSvc, profilesSvc)
	support.RegisterRoutes(r, supportSvc, profilesSvc)
	location.RegisterRoutes(r, locationSvc)
	uploads.RegisterRoutes(r, uploadsSvc, profilesSvc)
	admin.RegisterRoutes(r, adminSvc)

	return r
}
