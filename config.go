package pantrysync

type SyncConfig struct {
	SnapshotPath           string `env:"SNAPSHOT_PATH,default=artifacts/household.json"`
	ResolverCandidateLimit int    `env:"RESOLVER_CANDIDATE_LIMIT,default=25"`
	ResolverVocabularyPath string `env:"RESOLVER_VOCABULARY_PATH"`
	SyncLogDir             string `env:"SYNC_LOG_DIR,default=./logs"`
}

type S3Config struct {
	Bucket      string `env:"ARTIFACTS_S3_BUCKET,required"`
	SnapshotKey string `env:"ARTIFACTS_SNAPSHOT_S3_KEY,default=household.json"`
}

type SlackConfig struct {
	WebhookURL string `env:"SLACK_WEBHOOK_URL"`
	Channel    string `env:"SLACK_CHANNEL,default=#groceries"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN"`
}
