package config

import (
	"flag"
	"os"
	"path"
	"strconv"
)

// Config описывает конфигурацию сервера сокращения ссылок.
type Config struct {
	ServerAddress     string // адрес HTTP сервера
	BaseURL           string // базовый адрес сокращенной ссылки
	FileStoragePath   string // путь к файловому хранилищу сокращенных ссылок
	DataSourceName    string // строка подключения к PostgreSQL
	MongoURI          string // строка подключения к MongoDB
	SQLitePath        string // путь к базе данных SQLite
	GRPCServerAddress string // адрес gRPC сервера
	TrustedSubnet     string // доверенная подсеть в нотации CIDR
	LogLevel          string // уровень логирования
	CacheCapacity     int    // количество записей в кеше
	EnableHTTPS       bool   // включает HTTPS с самоподписанным сертификатом
}

const (
	defaultServerAddr     = ":8080"
	defaultBaseURL        = "http://localhost:8080"
	defaultGRPCServerAddr = ":3200"
	defaultLogLevel       = "info"
	defaultCacheCapacity  = 1000
)

var defaultFileStoragePath = path.Join(os.TempDir(), "short-url-db.json")

// Environment определяет доступ к переменным среды.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// New создает экземпляр конфигурации с настройками по умолчанию.
func New() Config {
	return Config{
		ServerAddress:     defaultServerAddr,
		BaseURL:           defaultBaseURL,
		FileStoragePath:   defaultFileStoragePath,
		GRPCServerAddress: defaultGRPCServerAddr,
		LogLevel:          defaultLogLevel,
		CacheCapacity:     defaultCacheCapacity,
	}
}

// FromArgs заполняет параметры конфигурации из аргументов командной строки.
func (conf Config) FromArgs(args []string) Config {
	flagSet := flag.NewFlagSet("", flag.PanicOnError)
	flagSet.StringVar(&conf.ServerAddress, "a", conf.ServerAddress, "server address")
	flagSet.StringVar(&conf.BaseURL, "b", conf.BaseURL, "base URL")
	flagSet.StringVar(&conf.FileStoragePath, "f", conf.FileStoragePath, "file storage path")
	flagSet.StringVar(&conf.DataSourceName, "d", conf.DataSourceName, "PostgreSQL data source name")
	flagSet.StringVar(&conf.MongoURI, "m", conf.MongoURI, "MongoDB connection URI")
	flagSet.StringVar(&conf.SQLitePath, "q", conf.SQLitePath, "SQLite database path")
	flagSet.StringVar(&conf.GRPCServerAddress, "g", conf.GRPCServerAddress, "gRPC server address")
	flagSet.StringVar(&conf.TrustedSubnet, "t", conf.TrustedSubnet, "trusted subnet (CIDR)")
	flagSet.StringVar(&conf.LogLevel, "l", conf.LogLevel, "log level")
	flagSet.IntVar(&conf.CacheCapacity, "c", conf.CacheCapacity, "cache capacity")
	flagSet.BoolVar(&conf.EnableHTTPS, "s", conf.EnableHTTPS, "enable HTTPS")

	_ = flagSet.Parse(args[1:]) // exclude command name
	return conf
}

// FromEnv заполняет параметры конфигурации из переменных среды.
// Значения, которые не удалось разобрать, игнорируются.
func (conf Config) FromEnv(env Environment) Config {
	lookupString(env, "SERVER_ADDRESS", &conf.ServerAddress)
	lookupString(env, "BASE_URL", &conf.BaseURL)
	lookupString(env, "FILE_STORAGE_PATH", &conf.FileStoragePath)
	lookupString(env, "DATABASE_DSN", &conf.DataSourceName)
	lookupString(env, "MONGO_URI", &conf.MongoURI)
	lookupString(env, "SQLITE_PATH", &conf.SQLitePath)
	lookupString(env, "GRPC_SERVER_ADDRESS", &conf.GRPCServerAddress)
	lookupString(env, "TRUSTED_SUBNET", &conf.TrustedSubnet)
	lookupString(env, "LOG_LEVEL", &conf.LogLevel)

	if value, ok := env.LookupEnv("CACHE_CAPACITY"); ok {
		if capacity, err := strconv.Atoi(value); err == nil {
			conf.CacheCapacity = capacity
		}
	}

	if value, ok := env.LookupEnv("ENABLE_HTTPS"); ok {
		if enable, err := strconv.ParseBool(value); err == nil {
			conf.EnableHTTPS = enable
		}
	}

	return conf
}

func lookupString(env Environment, key string, dst *string) {
	if value, ok := env.LookupEnv(key); ok {
		*dst = value
	}
}
