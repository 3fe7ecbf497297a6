package storage_test

import (
	"testing"

	"geo-manager/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cases := []struct {
		name string
		cfg  storage.Config
	}{
		{
			name: "BareEndpoint",
			cfg: storage.Config{
				Endpoint:  "localhost:9000",
				AccessKey: "testkey",
				SecretKey: "testsecret",
				Bucket:    "geodata",
				Region:    "us-east-1",
			},
		},
		{
			// The scheme must be stripped before handing the endpoint
			// to minio.
			name: "EndpointWithHTTP",
			cfg: storage.Config{
				Endpoint:  "http://localhost:9000",
				AccessKey: "testkey",
				SecretKey: "testsecret",
			},
		},
		{
			name: "EndpointWithHTTPS",
			cfg: storage.Config{
				Endpoint:  "https://s3.amazonaws.com",
				AccessKey: "testkey",
				SecretKey: "testsecret",
				UseSSL:    true,
				Region:    "us-east-1",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := storage.NewClient(tc.cfg)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
