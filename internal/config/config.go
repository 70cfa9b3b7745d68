package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where the ledger, the order
	// book records and the webhooks are stored.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch the database of order and fill records
	// between those supported.
	DBTypeKey = "DB_TYPE"
	// LedgerTypeKey is used to switch the local settlement layer between
	// those supported.
	LedgerTypeKey = "LEDGER_TYPE"
	// MaxFillRetriesKey is the number of times a fill is retried when the
	// selected order has been consumed by somebody else.
	MaxFillRetriesKey = "MAX_FILL_RETRIES"
	// FillRetryRateKey is the max number of fill attempts per second.
	FillRetryRateKey = "FILL_RETRY_RATE"
	// EnableMetricsKey enables the periodic logging of runtime statistics and
	// the dump of the collected metrics on exit.
	EnableMetricsKey = "ENABLE_METRICS"
	// StatsIntervalKey defines the interval, in seconds, for printing
	// statistics.
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation      = "db"
	LedgerLocation  = "ledger"
	PubSubLocation  = "pubsub"
	StatsLocation   = "stats"
	StateFilename   = "state.json"
	MetricsFilename = "metrics.txt"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("spark-miden", false)

	supportedDBs = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("SPARK")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(LedgerTypeKey, DBBadger)
	vip.SetDefault(MaxFillRetriesKey, 3)
	vip.SetDefault(FillRetryRateKey, 10)
	vip.SetDefault(EnableMetricsKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetStatsInterval returns the interval for printing statistics.
func GetStatsInterval() time.Duration {
	return time.Duration(GetInt(StatsIntervalKey)) * time.Second
}

// GetDbDir returns the directory of the order and fill records, empty for
// the inmemory database.
func GetDbDir() string {
	return dirFor(DBTypeKey, DbLocation)
}

// GetLedgerDir returns the directory of the local ledger, empty for the
// inmemory ledger.
func GetLedgerDir() string {
	return dirFor(LedgerTypeKey, LedgerLocation)
}

// GetPubSubDir returns the directory of the webhook subscriptions, empty
// for the inmemory database.
func GetPubSubDir() string {
	return dirFor(DBTypeKey, PubSubLocation)
}

func GetStatePath() string {
	return filepath.Join(GetDatadir(), StateFilename)
}

func GetMetricsPath() string {
	return filepath.Join(GetDatadir(), StatsLocation, MetricsFilename)
}

func dirFor(typeKey, location string) string {
	if GetString(typeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), location)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	for _, key := range []string{DBTypeKey, LedgerTypeKey} {
		if _, ok := supportedDBs[GetString(key)]; !ok {
			return fmt.Errorf(
				"%s must be one of %s, %s", key, DBBadger, DBInMemory,
			)
		}
	}

	if GetInt(MaxFillRetriesKey) < 0 {
		return fmt.Errorf("%s must not be negative", MaxFillRetriesKey)
	}
	if GetInt(FillRetryRateKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", FillRetryRateKey)
	}
	if GetBool(EnableMetricsKey) && GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", StatsIntervalKey)
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}

	for _, dir := range []string{GetDbDir(), GetLedgerDir(), GetPubSubDir()} {
		if dir == "" {
			continue
		}
		if err := makeDirectoryIfNotExists(dir); err != nil {
			return err
		}
	}

	if GetBool(EnableMetricsKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, StatsLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
