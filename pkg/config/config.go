package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	Store StoreConfig
	DB    DBConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
	SIAT  SIATConfig
	Sales SalesConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// StoreConfig selecciona el backend de persistencia de ventas/clientes/stock.
type StoreConfig struct {
	Driver string // "memory" | "postgres"
}

// SIATConfig configuración para facturación electrónica ante el SIN (Bolivia).
type SIATConfig struct {
	Env        string        // "dev" = pasarela simulada en proceso; "test"/"prod" = WS del SIN
	BaseURL    string        // URL base del WS SIAT (vacío en dev)
	Timeout    time.Duration // deadline por request al WS
	MaxRetries int           // reintentos ante fallo transitorio (timeout/red)
	CompanyNIT string        // NIT del emisor (entra al CUF)
	BranchCode string        // código de sucursal emisora
	SystemCode string        // código de sistema autorizado por el SIN
}

// SalesConfig reglas de negocio parametrizables del motor de ventas.
type SalesConfig struct {
	FiscalIDThreshold float64 // total desde el cual se exige NIT real (no el código "4444")
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT. Los tokens los emite el servicio central de la cadena;
// esta API solo los valida.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde un archivo .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SIAT_ENV, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env en el directorio de trabajo
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "farmavida-pos"),
		},
		Store: StoreConfig{
			Driver: getString(v, "STORE_DRIVER", "memory"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "farmavida_pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "farmavida-auth"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		SIAT: SIATConfig{
			Env:        getString(v, "SIAT_ENV", "dev"),
			BaseURL:    getString(v, "SIAT_BASE_URL", ""),
			Timeout:    time.Duration(getInt(v, "SIAT_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries: getInt(v, "SIAT_MAX_RETRIES", 3),
			CompanyNIT: getString(v, "SIAT_COMPANY_NIT", ""),
			BranchCode: getString(v, "SIAT_BRANCH_CODE", "0"),
			SystemCode: getString(v, "SIAT_SYSTEM_CODE", ""),
		},
		Sales: SalesConfig{
			FiscalIDThreshold: getFloat(v, "SALES_FISCAL_ID_THRESHOLD", 1000),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			f, _ := strconv.ParseFloat(v.GetString(key), 64)
			return f
		default:
			return v.GetFloat64(key)
		}
	}
	return def
}
