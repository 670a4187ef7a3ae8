package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	MongoURI     string `env:"MONGO-URI" ini:"mongo_uri"`
	DatabaseName string `env:"DATABASE-NAME" ini:"database_name"`
	CompaniesDir string `env:"COMPANIES-DIR" ini:"companies_dir"`
	VectorDir    string `env:"VECTOR-DIR" ini:"vector_dir"`

	GenerationProvider string `env:"GENERATION-PROVIDER" ini:"generation_provider"`

	EmbeddingModel      string `env:"EMBEDDING-MODEL" ini:"embedding_model"`
	EmbedTimeoutSeconds int    `env:"EMBED-TIMEOUT-SECONDS" ini:"embed_timeout_seconds"`

	OcrLanguages string `env:"OCR-LANGUAGES" ini:"ocr_languages"`

	AgentTTLSeconds  int `env:"AGENT-TTL-SECONDS" ini:"agent_ttl_seconds"`
	AgentMaxMessages int `env:"AGENT-MAX-MESSAGES" ini:"agent_max_messages"`
}
