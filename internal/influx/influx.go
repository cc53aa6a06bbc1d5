// Package influx streams per-tick occupancy telemetry to InfluxDB. The
// sink is optional; when the client cannot connect, writes are dropped
// with a debug log so the simulation keeps running.
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Bucket  string
	Logger  zerolog.Logger
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		IsValid: false,
		Bucket:  viper.GetString("influx.bucket"),
		Logger:  log,
	}
}

// Connect establishes a connection to InfluxDB and prepares the write API.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Msg("InfluxDB unreachable, telemetry disabled")
		return nil
	}
	m.IsValid = true

	m.Writer = m.Client.WriteAPI(viper.GetString("influx.org"), m.Bucket)
	errorsCh := m.Writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()

	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// WriteTick writes one occupancy sample.
func (m *Manager) WriteTick(tick uint64, elapsed float64, vehicles, free, reserved, occupied int) {
	if !m.IsValid {
		m.Logger.Debug().Msg("InfluxDB not connected, dropping tick sample")
		return
	}

	point := influxdb2.NewPoint(
		"occupancy",
		map[string]string{},
		map[string]interface{}{
			"tick":     int64(tick),
			"elapsed":  elapsed,
			"vehicles": vehicles,
			"free":     free,
			"reserved": reserved,
			"occupied": occupied,
		},
		time.Now(),
	)
	m.Writer.WritePoint(point)
}

// Close flushes and shuts the client down.
func (m *Manager) Close() {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
}
