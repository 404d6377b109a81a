package objectstore

import (
	"testing"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("AKIA", "secret")
	assert.Equal(t, ProviderS3, cfg.Provider)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.True(t, cfg.UseSSL)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil config", nil, true},
		{"missing access key", &Config{SecretKey: "s"}, true},
		{"missing secret key", &Config{AccessKey: "a"}, true},
		{"empty provider means s3", &Config{AccessKey: "a", SecretKey: "s"}, false},
		{"minio without endpoint", &Config{Provider: ProviderMinIO, AccessKey: "a", SecretKey: "s"}, true},
		{"minio with endpoint", &Config{Provider: ProviderMinIO, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, false},
		{"unknown provider", &Config{Provider: "gcs", AccessKey: "a", SecretKey: "s"}, true},
		{"negative page size", &Config{AccessKey: "a", SecretKey: "s", PageSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, errs.IsConfiguration(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_RegionOrDefault(t *testing.T) {
	assert.Equal(t, DefaultRegion, (&Config{}).RegionOrDefault())
	assert.Equal(t, "eu-west-1", (&Config{Region: "eu-west-1"}).RegionOrDefault())
}

func TestPage_Keys(t *testing.T) {
	page := &Page{Objects: []ObjectInfo{
		{Key: "foo/"},
		{Key: "foo/a.csv"},
		{Key: "foo/sub/", IsDir: true},
		{Key: "foo/b.csv"},
	}}

	assert.Equal(t, []string{"foo/a.csv", "foo/b.csv"}, page.Keys())
	assert.Empty(t, (&Page{}).Keys())
}

func TestListOptions_PageLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		fallback int
		want     int
	}{
		{"explicit limit", 5, 100, 5},
		{"zero uses fallback", 0, 100, 100},
		{"negative uses fallback", -3, 100, 100},
		{"neither set", 0, 0, 0},
		{"limit clamped", 1 << 40, 0, MaxPageSize},
		{"fallback clamped", 0, 5000, MaxPageSize},
		{"max passes through", MaxPageSize, 0, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListOptions{Limit: tt.limit}.PageLimit(tt.fallback))
		})
	}
}
