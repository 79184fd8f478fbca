package config

const (
	StorageBackendSupabase = "supabase"
	StorageBackendS3       = "s3"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStorageBucket() string
	GetS3Endpoint() string
	GetS3Region() string
	GetS3AccessKey() string
	GetS3SecretKey() string
}

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type Storage struct {
	Backend   string `env:"STORAGE_BACKEND" env-default:"supabase" env-description:"supabase (storage API) or s3 (any S3-compatible endpoint)"`
	Bucket    string `env:"STORAGE_BUCKET" env-default:"drawings" env-description:"Bucket holding uploaded drawings"`
	Endpoint  string `env:"STORAGE_S3_ENDPOINT" env-description:"S3 endpoint, e.g. http://localhost:9000"`
	Region    string `env:"STORAGE_S3_REGION" env-description:"S3 region"`
	AccessKey string `env:"STORAGE_S3_ACCESS_KEY" env-description:"S3 access key"`
	SecretKey string `env:"STORAGE_S3_SECRET_KEY" env-description:"S3 secret key"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	if s.Backend == StorageBackendS3 {
		return StorageBackendS3
	}
	return StorageBackendSupabase
}

func (s Storage) GetStorageBucket() string {
	if s.Bucket == "" {
		return "drawings"
	}
	return s.Bucket
}

func (s Storage) GetS3Endpoint() string  { return s.Endpoint }
func (s Storage) GetS3Region() string    { return s.Region }
func (s Storage) GetS3AccessKey() string { return s.AccessKey }
func (s Storage) GetS3SecretKey() string { return s.SecretKey }

type Database struct {
	URL string `env:"DATABASE_URL" env-description:"Postgres DSN for drawing_files; the REST API is used when unset"`
}

var _ DatabaseConfig = Database{}

func (d Database) GetDatabaseURL() string {
	return d.URL
}
