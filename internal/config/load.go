package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g.
// REFERRAL_SOURCES_USER_REFERRALS_LOCATION or REFERRAL_OUTPUT_PATH.
const EnvPrefix = "REFERRAL"

// Load reads the pipeline file at path (YAML or JSON, by extension) and
// applies environment overrides. An empty path yields a pipeline built from
// defaults and environment only.
func Load(path string) (Pipeline, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored; existing variables are not
// overwritten.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can override keys the
// config file does not mention.
func setDefaults(v *viper.Viper) {
	v.SetDefault("job", "referral_report")
	for _, ns := range (Sources{}).Named() {
		v.SetDefault("sources."+ns.Name+".location", "")
		v.SetDefault("sources."+ns.Name+".parser.kind", "csv")
	}
	v.SetDefault("output.kind", "csv")
	v.SetDefault("output.path", "referral_business_logic_report.csv")
	v.SetDefault("output.sample_rows", 10)
	v.SetDefault("storage.kind", "none")
	v.SetDefault("storage.db.dsn", "")
	v.SetDefault("storage.db.table", "referral_report")
	v.SetDefault("storage.db.auto_create_table", true)
	v.SetDefault("storage.db.replace", false)
	v.SetDefault("publish.kind", "none")
	v.SetDefault("publish.amqp.url", "")
	v.SetDefault("publish.amqp.exchange", "")
	v.SetDefault("runtime.reader_workers", 1)
	v.SetDefault("runtime.batch_size", 1000)
	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.datadog_addr", "")
}
