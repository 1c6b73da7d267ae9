package config

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the process-wide handles built at startup.
type Config struct {
	DB        *sql.DB
	Driver    string
	Log       *zap.Logger
	Resources *listing.Definitions
}

var (
	Conf      *viper.Viper
	AppConfig *Config
)

func init() {
	Conf = viper.New()

	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("app_name", "School Nexus")
	Conf.SetDefault("listen_addr", ":8080")
	Conf.SetDefault("db_driver", "postgres")
	Conf.SetDefault("db_dsn", "host=localhost port=5432 user=postgres dbname=nexus sslmode=disable")
	Conf.SetDefault("jwt_secret", "school-nexus-secret-key")
	Conf.SetDefault("jwt_ttl", 24*time.Hour)
	Conf.SetDefault("timezone", "Africa/Kampala")
	Conf.SetDefault("debug", false)
	Conf.SetDefault("resources_file", "")
	Conf.SetDefault("export_dir", "reports")
	Conf.SetDefault("report_hour", 2)
	Conf.SetDefault("report_minute", 0)

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config.godotenv(.env): %v", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("config.os.Stat(.env): %v", err)
	}

	Conf.SetEnvPrefix("NEXUS")
	Conf.AutomaticEnv()
}

// Init builds AppConfig from the current settings. Callers close the DB.
func Init() (*Config, error) {
	logger, err := InitLogger(Conf.GetBool("debug"))
	if err != nil {
		return nil, err
	}

	SetTimezone(logger, Conf.GetString("timezone"))

	defs, err := LoadResources(Conf.GetString("resources_file"))
	if err != nil {
		return nil, err
	}
	logger.Info("Resource definitions loaded", zap.Int("resources", len(defs.Resources)))

	driver := Conf.GetString("db_driver")
	db, err := OpenDB(driver, Conf.GetString("db_dsn"))
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected successfully", zap.String("driver", driver))

	AppConfig = &Config{DB: db, Driver: driver, Log: logger, Resources: defs}
	return AppConfig, nil
}

// OpenDB opens and pings a postgres or sqlite3 database.
func OpenDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported db_driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite3" {
		// one writer; an in-memory database is per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// SetTimezone sets time.Local, falling back to UTC+3 when the zone database lacks name.
func SetTimezone(logger *zap.Logger, name string) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Failed to load time zone, falling back to UTC+3", zap.String("timezone", name), zap.Error(err))
		time.Local = time.FixedZone("EAT", 3*60*60)
		return
	}
	time.Local = loc
	logger.Info("Application time zone set", zap.String("timezone", time.Local.String()))
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

// Logger returns the application logger, or a no-op logger before Init.
func Logger() *zap.Logger {
	if AppConfig == nil || AppConfig.Log == nil {
		return zap.NewNop()
	}
	return AppConfig.Log
}

func JWTSecret() []byte {
	return []byte(Conf.GetString("jwt_secret"))
}

func JWTTTL() time.Duration {
	return Conf.GetDuration("jwt_ttl")
}
