package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Printer configures the factory-site client.
type Printer struct {
	APIURL               string
	Token                string
	AuthMode             string
	Site                 string
	CheckInterval        time.Duration
	ErrorBackoff         time.Duration
	RequestTimeout       time.Duration
	LookbackDays         int
	PrintSink            string
	Dedup                string
	TicketWidth          int
	UncategorizedDefault bool
	OrganizationName     string
	TicketTitle          string
	ControlAddr          string
	LogLevel             string
}

// Server configures the order store side.
type Server struct {
	Port        string
	DBDriver    string
	DatabaseURL string
	MySQL       MySQL
	RedisHost   string
	RabbitMQURL string
	Exchange    string
	Token       string
	LogLevel    string
}

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

func newViper(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// LoadPrinter reads FACTORY_* settings from the environment and, when file is
// non-empty, from a config file whose keys use the same names in lower case.
func LoadPrinter(file string) (Printer, error) {
	v, err := newViper(file)
	if err != nil {
		return Printer{}, err
	}
	v.SetDefault("factory_api_url", "http://localhost:8080")
	v.SetDefault("factory_auth_mode", "secret")
	v.SetDefault("factory_site", "factory")
	v.SetDefault("factory_check_interval", 30)
	v.SetDefault("factory_error_backoff", 5)
	v.SetDefault("factory_request_timeout", 15)
	v.SetDefault("factory_lookback_days", 1)
	v.SetDefault("factory_printer", "stdout")
	v.SetDefault("factory_dedup", "memory")
	v.SetDefault("factory_ticket_width", 50)
	v.SetDefault("factory_uncategorized_fallback", false)
	v.SetDefault("factory_org_name", "TATO PASTA & BAKLAVA")
	v.SetDefault("factory_ticket_title", "FABRİKA ÜRETİM SİPARİŞİ")
	v.SetDefault("factory_control_addr", "")
	v.SetDefault("log_level", "info")

	cfg := Printer{
		APIURL:               strings.TrimRight(v.GetString("factory_api_url"), "/"),
		Token:                v.GetString("factory_token"),
		AuthMode:             strings.ToLower(v.GetString("factory_auth_mode")),
		Site:                 v.GetString("factory_site"),
		CheckInterval:        seconds(v.GetInt("factory_check_interval")),
		ErrorBackoff:         seconds(v.GetInt("factory_error_backoff")),
		RequestTimeout:       seconds(v.GetInt("factory_request_timeout")),
		LookbackDays:         v.GetInt("factory_lookback_days"),
		PrintSink:            v.GetString("factory_printer"),
		Dedup:                v.GetString("factory_dedup"),
		TicketWidth:          v.GetInt("factory_ticket_width"),
		UncategorizedDefault: v.GetBool("factory_uncategorized_fallback"),
		OrganizationName:     v.GetString("factory_org_name"),
		TicketTitle:          v.GetString("factory_ticket_title"),
		ControlAddr:          v.GetString("factory_control_addr"),
		LogLevel:             v.GetString("log_level"),
	}
	return cfg, cfg.Validate()
}

func (c Printer) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("factory_api_url is required"))
	}
	if c.Token == "" {
		errs = append(errs, errors.New("factory_token is required"))
	}
	if c.AuthMode != "secret" && c.AuthMode != "jwt" {
		errs = append(errs, fmt.Errorf("factory_auth_mode %q: want secret or jwt", c.AuthMode))
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, errors.New("factory_check_interval must be positive"))
	}
	if c.ErrorBackoff <= 0 {
		errs = append(errs, errors.New("factory_error_backoff must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("factory_request_timeout must be positive"))
	}
	if c.LookbackDays <= 0 {
		errs = append(errs, errors.New("factory_lookback_days must be positive"))
	}
	if c.TicketWidth < 40 {
		errs = append(errs, errors.New("factory_ticket_width must be at least 40"))
	}
	return errors.Join(errs...)
}

func LoadServer(file string) (Server, error) {
	v, err := newViper(file)
	if err != nil {
		return Server{}, err
	}
	v.SetDefault("port", "8080")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("mysql_port", "3306")
	v.SetDefault("rabbitmq_exchange", "order.exchange")
	v.SetDefault("log_level", "info")

	cfg := Server{
		Port:        v.GetString("port"),
		DBDriver:    strings.ToLower(v.GetString("db_driver")),
		DatabaseURL: v.GetString("database_url"),
		MySQL: MySQL{
			User:     v.GetString("mysql_user"),
			Password: v.GetString("mysql_password"),
			Host:     v.GetString("mysql_host"),
			Port:     v.GetString("mysql_port"),
			Database: v.GetString("mysql_database"),
		},
		RedisHost:   v.GetString("redis_host"),
		RabbitMQURL: v.GetString("rabbitmq_url"),
		Exchange:    v.GetString("rabbitmq_exchange"),
		Token:       v.GetString("factory_token"),
		LogLevel:    v.GetString("log_level"),
	}
	if cfg.Token == "" {
		return cfg, errors.New("factory_token is required")
	}
	return cfg, nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
