package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
)

// Engine selects the backing database engine.
type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineSQLite   Engine = "sqlite"
)

// Config holds the configuration values for the application.
type Config struct {
	ListenPort   string
	GroqAPIKey   string
	GroqModel    string
	Engine       Engine
	DatabaseURL  string
	SQLitePath   string
	HistoryLimit int
}

// Load reads configuration from environment variables, applying defaults
// where a value is optional. A missing GROQ_API_KEY is an error: the service
// refuses to start without a completion credential.
func Load() (*Config, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GROQ_API_KEY must be set")
	}

	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama-3.1-8b-instant"
	}

	engine := Engine(os.Getenv("DB_TYPE"))
	switch engine {
	case "":
		engine = EnginePostgres
	case EnginePostgres, EngineSQLite:
	default:
		return nil, errors.New("DB_TYPE must be postgres or sqlite")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if engine == EnginePostgres && dbURL == "" {
		dbURL = postgresURLFromParts()
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "health_chatbot.db"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	historyLimit := 20
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			historyLimit = n
		}
	}

	return &Config{
		ListenPort:   port,
		GroqAPIKey:   apiKey,
		GroqModel:    model,
		Engine:       engine,
		DatabaseURL:  dbURL,
		SQLitePath:   sqlitePath,
		HistoryLimit: historyLimit,
	}, nil
}

// postgresURLFromParts composes a connection URL from the split DB_* variables
// used by local deployments that do not provide DATABASE_URL directly.
func postgresURLFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "health_chatbot_db"
	}

	u := &url.URL{
		Scheme:   "postgres",
		Host:     host + ":" + dbPort,
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}
