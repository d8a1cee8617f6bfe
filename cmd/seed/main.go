// Command seed loads a demo fleet and one account per role into MongoDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/auth"
	"github.com/ukydev/aivodrive/internal/config"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/handlers"
	"github.com/ukydev/aivodrive/internal/logging"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var depots = []string{
	"North Depot", "South Depot", "Harbor Yard", "Airport Cargo", "City Hub",
	"Rail Terminal", "West Warehouse", "Industrial Park", "Market Square", "University Campus",
}

var (
	makes = map[string][]string{
		"diesel":   {"Ford", "Mercedes-Benz", "Iveco", "Volvo"},
		"petrol":   {"Toyota", "Volkswagen", "Renault"},
		"electric": {"Tesla", "Nissan", "BYD", "Rivian"},
		"hybrid":   {"Toyota", "Hyundai", "Kia"},
	}
	vehicleModels = map[string][]string{
		"diesel":   {"Transit", "Sprinter", "Daily", "FH16"},
		"petrol":   {"Hiace", "Crafter", "Master"},
		"electric": {"Model Y", "e-NV200", "T3", "EDV"},
		"hybrid":   {"Proace", "Tucson", "Niro"},
	}
	fuelTypes        = []string{"diesel", "petrol", "electric", "hybrid"}
	firstNames       = []string{"Ana", "Ben", "Chloe", "Dario", "Elif", "Farid", "Greta", "Hugo", "Ines", "Jonas", "Kemal", "Lena"}
	lastNames        = []string{"Silva", "Okafor", "Novak", "Rossi", "Yilmaz", "Haddad", "Berg", "Moreau", "Costa", "Weber"}
	maintenanceTypes = []string{"oil_change", "tire_rotation", "brake_service", "battery_service", "inspection", "repair"}
	purposes         = []string{"delivery", "pickup", "transfer", "service"}
)

// fleet is a consistent set of demo records. IDs are assigned up front so trips and
// maintenance can reference vehicles and drivers before anything is stored.
type fleet struct {
	Vehicles    []models.Vehicle
	Drivers     []models.Driver
	Trips       []models.Trip
	Maintenance []models.Maintenance
}

func pick[T any](r *rand.Rand, xs []T) T { return xs[r.Intn(len(xs))] }

func ptr(t time.Time) *time.Time { return &t }

// buildFleet generates size vehicles and drivers with trips and maintenance around
// now. Drivers with a trip in progress are on_trip; vehicles with work in progress
// are in maintenance.
func buildFleet(r *rand.Rand, size int, now time.Time) fleet {
	var f fleet
	now = now.UTC().Truncate(time.Minute)

	for i := 0; i < size; i++ {
		fuel := pick(r, fuelTypes)
		f.Vehicles = append(f.Vehicles, models.Vehicle{
			ID:           primitive.NewObjectID(),
			Make:         pick(r, makes[fuel]),
			Model:        pick(r, vehicleModels[fuel]),
			Year:         2018 + r.Intn(8),
			LicensePlate: fmt.Sprintf("AV-%03d-%c%c", 100+i, 'A'+rune(r.Intn(26)), 'A'+rune(r.Intn(26))),
			FuelType:     fuel,
			Status:       models.VehicleActive,
			Odometer:     float64(5000 + r.Intn(180000)),
			CreatedAt:    now,
			UpdatedAt:    now,
		})

		first, last := pick(r, firstNames), pick(r, lastNames)
		f.Drivers = append(f.Drivers, models.Driver{
			ID:        primitive.NewObjectID(),
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("driver%02d@aivodrive.io", i+1),
			Phone:     fmt.Sprintf("+3519100%05d", r.Intn(100000)),
			License: models.License{
				Number:    fmt.Sprintf("L%07d", r.Intn(10000000)),
				Type:      pick(r, []string{"B", "C", "CE"}),
				IssueDate: now.AddDate(-5-r.Intn(10), 0, 0),
				Expiry:    now.AddDate(r.Intn(6)-1, r.Intn(12), 0),
			},
			EmployeeID: fmt.Sprintf("EMP-%04d", 1000+i),
			HireDate:   now.AddDate(-r.Intn(8), -r.Intn(12), 0),
			Status:     models.DriverAvailable,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if size == 0 {
		return f
	}
	if size > 2 {
		f.Drivers[size-1].Status = models.DriverOffDuty
	}

	for i := range f.Drivers {
		d := &f.Drivers[i]
		v := &f.Vehicles[i]
		d.AssignedVehicleID = v.ID.Hex()
		v.AssignedDriverID = d.ID.Hex()

		for n := 0; n < 3; n++ {
			trip := models.Trip{
				ID:          primitive.NewObjectID(),
				Origin:      pick(r, depots),
				Destination: pick(r, depots),
				DriverID:    d.ID.Hex(),
				VehicleID:   v.ID.Hex(),
				Distance:    float64(5 + r.Intn(300)),
				Purpose:     pick(r, purposes),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			for trip.Destination == trip.Origin {
				trip.Destination = pick(r, depots)
			}
			switch {
			case n == 0 && i%3 == 0 && d.Status == models.DriverAvailable:
				trip.Status = models.TripInProgress
				trip.StartTime = now.Add(-time.Duration(1+r.Intn(4)) * time.Hour)
				trip.StartedAt = ptr(trip.StartTime)
				d.Status = models.DriverOnTrip
			case n == 1 && i%4 == 1:
				trip.Status = models.TripCancelled
				trip.StartTime = now.AddDate(0, 0, -r.Intn(10))
				trip.CancellationReason = "Customer rescheduled"
			case n == 1:
				trip.Status = models.TripCompleted
				trip.StartTime = now.AddDate(0, 0, -1-r.Intn(20))
				trip.StartedAt = ptr(trip.StartTime)
				trip.CompletedAt = ptr(trip.StartTime.Add(time.Duration(1+r.Intn(6)) * time.Hour))
				trip.EndTime = ptr(*trip.CompletedAt)
			default:
				trip.Status = models.TripScheduled
				trip.StartTime = now.Add(time.Duration(2+r.Intn(72)) * time.Hour)
			}
			f.Trips = append(f.Trips, trip)
		}
	}

	for i := range f.Vehicles {
		v := &f.Vehicles[i]
		m := models.Maintenance{
			ID:              primitive.NewObjectID(),
			VehicleID:       v.ID.Hex(),
			MaintenanceType: pick(r, maintenanceTypes),
			Description:     "Routine fleet service",
			Cost:            float64(80+r.Intn(900)) + 0.5,
			Technician:      pick(r, []string{"M. Costa", "R. Weber", "S. Okafor"}),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		switch i % 4 {
		case 0:
			m.Status = models.MaintenanceCompleted
			m.Date = now.AddDate(0, 0, -14-r.Intn(60))
			m.CompletedAt = ptr(m.Date.Add(3 * time.Hour))
			m.CompletionNotes = "No issues found"
			v.LastMaintenanceDate = ptr(*m.CompletedAt)
		case 1:
			// Past its date and never started: shown as overdue.
			m.Status = models.MaintenanceScheduled
			m.Date = now.AddDate(0, 0, -1-r.Intn(5))
		case 2:
			if tripInProgress(f.Trips, v.ID.Hex()) {
				m.Status = models.MaintenanceScheduled
				m.Date = now.AddDate(0, 0, 7+r.Intn(14))
			} else {
				m.Status = models.MaintenanceInProgress
				m.Date = now.Add(-2 * time.Hour)
				v.Status = models.VehicleMaintenance
			}
		default:
			m.Status = models.MaintenanceScheduled
			m.Date = now.AddDate(0, 0, 7+r.Intn(21))
		}
		f.Maintenance = append(f.Maintenance, m)
	}
	return f
}

func tripInProgress(trips []models.Trip, vehicleID string) bool {
	for _, t := range trips {
		if t.VehicleID == vehicleID && t.Status == models.TripInProgress {
			return true
		}
	}
	return false
}

type account struct {
	User     models.User
	Password string
}

// accounts returns the demo logins. The driver account is linked to the first
// driver record.
func accounts(f fleet, password string) []account {
	out := []account{
		{models.User{Name: "Fleet Admin", Email: "admin@aivodrive.io", Role: models.RoleAdmin}, password},
		{models.User{Name: "Dispatch Desk", Email: "dispatch@aivodrive.io", Phone: "+351910000001", Role: models.RoleDispatcher}, password},
	}
	if len(f.Drivers) > 0 {
		d := f.Drivers[0]
		out = append(out, account{models.User{
			Name: d.FirstName + " " + d.LastName, Email: d.Email, Phone: d.Phone,
			Role: models.RoleDriver, DriverID: d.ID.Hex(),
		}, password})
	}
	return out
}

func insertAll[T any](ctx context.Context, store db.Store[T], docs []T) error {
	for _, doc := range docs {
		if _, err := store.Insert(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func seed(ctx context.Context, database *mongo.Database, f fleet, password string, alerter *handlers.Alerter) error {
	if err := insertAll[models.Vehicle](ctx, db.NewMongoStore[models.Vehicle](database, "vehicles"), f.Vehicles); err != nil {
		return fmt.Errorf("vehicles: %w", err)
	}
	if err := insertAll[models.Driver](ctx, db.NewMongoStore[models.Driver](database, "drivers"), f.Drivers); err != nil {
		return fmt.Errorf("drivers: %w", err)
	}
	if err := insertAll[models.Trip](ctx, db.NewMongoStore[models.Trip](database, "trips"), f.Trips); err != nil {
		return fmt.Errorf("trips: %w", err)
	}
	if err := insertAll[models.Maintenance](ctx, db.NewMongoStore[models.Maintenance](database, "maintenance"), f.Maintenance); err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}

	authService := auth.NewService("", time.Hour)
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	for _, acct := range accounts(f, password) {
		_, err := users.FindUserByEmail(ctx, acct.User.Email)
		if err == nil {
			log.WithField("email", acct.User.Email).Info("Account exists, skipping")
			continue
		}
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("users: %w", err)
		}
		hash, err := authService.HashPassword(acct.Password)
		if err != nil {
			return err
		}
		acct.User.PasswordHash = hash
		if _, err := users.InsertUser(ctx, acct.User); err != nil {
			return fmt.Errorf("users: %w", err)
		}
		log.WithFields(log.Fields{"email": acct.User.Email, "role": acct.User.Role}).Info("Created account")
	}

	alerter.Raise(ctx, models.Alert{
		Type:    "system",
		Title:   "Demo data loaded",
		Message: fmt.Sprintf("%d vehicles, %d drivers and %d trips are ready", len(f.Vehicles), len(f.Drivers), len(f.Trips)),
		Link:    "/dashboard",
	})
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Environment, os.Stdout)

	size := 8
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			size = n
		}
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	database := client.Database(cfg.MongoDB)

	if os.Getenv("SEED_RESET") == "true" {
		for _, name := range []string{"vehicles", "drivers", "trips", "maintenance", "alerts"} {
			if err := database.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("Failed to drop %s: %v", name, err)
			}
		}
		log.Info("Dropped fleet collections")
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.MQTTBroker != "" {
		if mc, err := notify.Connect(cfg.MQTTBroker, "aivodrive-seed"); err == nil {
			p := notify.NewMQTTPublisher(mc, cfg.MQTTTopic)
			defer p.Close()
			publisher = p
		} else {
			log.WithError(err).Warn("MQTT unavailable, seed alert will not be pushed")
		}
	}

	f := buildFleet(rand.New(rand.NewSource(time.Now().UnixNano())), size, time.Now())
	if err := seed(ctx, database, f, password, handlers.NewAlerter(db.NewMongoAlertCollection(database), publisher)); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.WithFields(log.Fields{
		"vehicles":    len(f.Vehicles),
		"drivers":     len(f.Drivers),
		"trips":       len(f.Trips),
		"maintenance": len(f.Maintenance),
	}).Info("Seed complete")
}
