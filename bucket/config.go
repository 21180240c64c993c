package bucket

type S3Config struct {
	BucketName     string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	Prefix         string
	StartAfter     string
}

type Config struct {
	S3              *S3Config
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// HasStaticCredentials reports whether a key pair was supplied explicitly.
// Without one the SDK default credential chain is used.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
