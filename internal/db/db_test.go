package db

import (
	"testing"

	"github.com/shinyyama/petverse-backend/internal/config"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "mysql tcp",
			cfg:  config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "petverse"},
			want: "u:p@tcp(db:3306)/petverse?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql cloud sql socket",
			cfg:  config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBName: "petverse", InstanceConnectionName: "proj:asia:db"},
			want: "u:p@unix(/cloudsql/proj:asia:db)/petverse?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql wrapped host",
			cfg:  config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "tcp(10.0.0.1:3307)", DBName: "petverse"},
			want: "u:p@tcp(10.0.0.1:3307)/petverse?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "postgres default port",
			cfg:  config.Config{DBDriver: "postgres", DBUser: "u", DBPassword: "p", DBHost: "pg", DBPort: "3306", DBName: "petverse"},
			want: "host=pg user=u password=p dbname=petverse port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "sqlite",
			cfg:  config.Config{DBDriver: "sqlite", DBName: "petverse"},
			want: "petverse.db",
		},
		{
			name: "explicit dsn",
			cfg:  config.Config{DBDriver: "postgres", DBDSN: "postgres://x"},
			want: "postgres://x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildDSN(&tt.cfg))
		})
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
}
