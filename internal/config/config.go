package config

import (
	"strings"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Env       string
	Debug     bool
	LogPath   string
	SentryDsn string

	MaxRequests    int
	ApiMaxRequests int
	ItemsPerPage   int
	ApiPort        string

	MirrorNode MirrorNodeConfig
	Metadata   MetadataConfig
	Hns        HnsConfig
}

type MirrorNodeConfig struct {
	Url        string
	Timeout    int
	Retries    int
	Rps        float64
	Burst      int
	TokenCache time.Duration
}

type MetadataConfig struct {
	IpfsHosts  []string
	Timeout    int
	Retries    int
	RetryDelay time.Duration
	ChunkSize  int
	CacheTTL   time.Duration
}

type HnsConfig struct {
	Url      string
	Timeout  int
	CacheTTL time.Duration
}

var ipfsHosts = []string{
	"https://ipfs.io/ipfs/",
	"https://dweb.link/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://gateway.ipfs.io/ipfs/",
}

func Init(name string) {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Debug("No .env file loaded")
	}

	viper.AutomaticEnv()
	setDefaults()

	initLogger(name)
}

func initLogger(name string) {
	c := Get()
	log.NewLogger(c.LogPath+"/"+name+".log", c.Debug, c.SentryDsn)
}

func setDefaults() {
	viper.SetDefault("ENV", "")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "./var/log")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("MAX_REQUESTS", 0)
	viper.SetDefault("API_MAX_REQUESTS", 50)
	viper.SetDefault("ITEMS_PER_PAGE", 12)
	viper.SetDefault("API_PORT", "8080")

	viper.SetDefault("MIRROR_NODE_URL", "https://mainnet-public.mirrornode.hedera.com")
	viper.SetDefault("MIRROR_NODE_TIMEOUT", 30)
	viper.SetDefault("MIRROR_NODE_RETRIES", 3)
	viper.SetDefault("MIRROR_NODE_RPS", 50.0)
	viper.SetDefault("MIRROR_NODE_BURST", 10)
	viper.SetDefault("TOKEN_CACHE_TTL", "10m")

	viper.SetDefault("IPFS_HOSTS", strings.Join(ipfsHosts, ","))
	viper.SetDefault("IPFS_TIMEOUT", 10)
	viper.SetDefault("METADATA_RETRIES", 5)
	viper.SetDefault("METADATA_RETRY_DELAY_MS", 0)
	viper.SetDefault("METADATA_CHUNK_SIZE", 100)
	viper.SetDefault("METADATA_CACHE_TTL", "1h")

	viper.SetDefault("HNS_URL", "")
	viper.SetDefault("HNS_TIMEOUT", 10)
	viper.SetDefault("HNS_CACHE_TTL", "10m")
}

func Get() *Config {
	return &Config{
		Env:            viper.GetString("ENV"),
		Debug:          viper.GetBool("DEBUG"),
		LogPath:        viper.GetString("LOG_PATH"),
		SentryDsn:      viper.GetString("SENTRY_DSN"),
		MaxRequests:    viper.GetInt("MAX_REQUESTS"),
		ApiMaxRequests: getInt("API_MAX_REQUESTS", 50),
		ItemsPerPage:   getInt("ITEMS_PER_PAGE", 12),
		ApiPort:        viper.GetString("API_PORT"),
		MirrorNode: MirrorNodeConfig{
			Url:        strings.TrimRight(viper.GetString("MIRROR_NODE_URL"), "/"),
			Timeout:    getInt("MIRROR_NODE_TIMEOUT", 30),
			Retries:    viper.GetInt("MIRROR_NODE_RETRIES"),
			Rps:        viper.GetFloat64("MIRROR_NODE_RPS"),
			Burst:      getInt("MIRROR_NODE_BURST", 10),
			TokenCache: getDuration("TOKEN_CACHE_TTL", 10*time.Minute),
		},
		Metadata: MetadataConfig{
			IpfsHosts:  getSlice("IPFS_HOSTS", ipfsHosts, ","),
			Timeout:    getInt("IPFS_TIMEOUT", 10),
			Retries:    getInt("METADATA_RETRIES", 5),
			RetryDelay: time.Duration(viper.GetInt("METADATA_RETRY_DELAY_MS")) * time.Millisecond,
			ChunkSize:  getInt("METADATA_CHUNK_SIZE", 100),
			CacheTTL:   getDuration("METADATA_CACHE_TTL", time.Hour),
		},
		Hns: HnsConfig{
			Url:      strings.TrimRight(viper.GetString("HNS_URL"), "/"),
			Timeout:  getInt("HNS_TIMEOUT", 10),
			CacheTTL: getDuration("HNS_CACHE_TTL", 10*time.Minute),
		},
	}
}

// getInt falls back to the default for zero or negative values.
func getInt(key string, defaultValue int) int {
	if val := viper.GetInt(key); val > 0 {
		return val
	}

	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if val := viper.GetDuration(key); val > 0 {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := viper.GetString(key)
	if valStr == "" {
		return defaultVal
	}

	vals := make([]string, 0)
	for _, v := range strings.Split(valStr, sep) {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return defaultVal
	}

	return vals
}
