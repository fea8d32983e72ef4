package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	payerService "github.com/jwalitptl/booking-api/internal/service/payer"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

var payerNames = []string{
	"Particular",
	"OSDE",
	"Swiss Medical",
	"Galeno",
	"Medifé",
	"IOMA",
	"PAMI",
}

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	days := flag.Int("days", 10, "number of upcoming days to fill")
	perDay := flag.Int("per-day", 6, "appointments to request per day")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	faker := gofakeit.New(*seed)

	validate := validator.New()
	payerRepo := postgres.NewPayerRepository(db)
	payers := payerService.NewService(payerRepo, validate)
	// Seeded bookings never email anyone
	appointments := appointmentService.NewService(postgres.NewAppointmentRepository(db), payerRepo,
		notification.NewService(email.NoopSender{}, nil), validate)

	payerIDs, err := seedPayers(ctx, payers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed payers")
	}

	created, err := seedAppointments(ctx, faker, appointments, payerIDs, *days, *perDay)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed appointments")
	}

	log.Info().Int("payers", len(payerIDs)).Int("appointments", created).Msg("seed complete")
}

// seedPayers creates the catalog, reusing payers that already exist
func seedPayers(ctx context.Context, svc *payerService.Service) ([]int64, error) {
	existing, err := svc.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(existing))
	for _, p := range existing {
		byName[p.Name] = p.ID
	}

	ids := make([]int64, 0, len(payerNames))
	for _, name := range payerNames {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
			continue
		}
		p, err := svc.Create(ctx, &model.CreatePayerRequest{Name: name})
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func seedAppointments(ctx context.Context, faker *gofakeit.Faker, svc *appointmentService.Service,
	payerIDs []int64, days, perDay int) (int, error) {
	template := appointmentService.DailyTemplate()
	statuses := []model.AppointmentStatus{
		model.AppointmentStatusRequested,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	}

	created := 0
	start := time.Now().AddDate(0, 0, 1)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")

		for i := 0; i < perDay; i++ {
			appt, err := svc.Create(ctx, &model.CreateAppointmentRequest{
				FirstName: faker.FirstName(),
				LastName:  faker.LastName(),
				Phone:     faker.Phone(),
				Email:     faker.Email(),
				PayerID:   payerIDs[faker.Number(0, len(payerIDs)-1)],
				Date:      date,
				Slot:      template[faker.Number(0, len(template)-1)],
			})
			if apperrors.Is(err, apperrors.KindConflict) {
				continue
			}
			if err != nil {
				return created, err
			}
			created++

			status := statuses[faker.Number(0, len(statuses)-1)]
			if status == model.AppointmentStatusRequested {
				continue
			}
			if _, err := svc.UpdateStatus(ctx, appt.ID, &model.UpdateStatusRequest{Status: string(status)}); err != nil {
				return created, err
			}
		}
		log.Info().Str("date", date).Int("total", created).Msg("day seeded")
	}
	return created, nil
}
