/*
 * Copyright 2025 the Song-Graph Authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// defaultDatabaseManager implements AbstractDatabaseManager for Postgres,
// MySQL, and SQLite.
type defaultDatabaseManager struct {
	config          *Config
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	stopHealthCheck chan struct{}
	healthStopOnce  sync.Once
	lastHealth      *HealthStatus
}

func newDatabaseManager(config *Config, logger Logger) *defaultDatabaseManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &defaultDatabaseManager{
		config:          config,
		logger:          logger,
		stopHealthCheck: make(chan struct{}),
	}
}

// Connect opens the connection, configures the pool, attaches query hooks,
// and verifies connectivity with a ping. It also starts the periodic health
// check loop when one is configured.
func (m *defaultDatabaseManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	cc := &m.config.ConnectionConfig
	db, sqlDB, err := m.createConnection(cc)
	if err != nil {
		return fmt.Errorf("failed to create %s connection: %w", cc.Type, err)
	}

	sqlDB.SetMaxIdleConns(cc.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cc.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cc.ConnMaxLifetime.AsDuration())
	sqlDB.SetConnMaxIdleTime(cc.ConnMaxIdleTime.AsDuration())

	if cc.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if cc.SlowQueryTime > 0 {
		db.AddQueryHook(newSlowQueryHook(cc.SlowQueryTime.AsDuration(), m.logger))
	}

	connectTimeout := cc.ConnectTimeout.AsDuration()
	if connectTimeout <= 0 {
		connectTimeout = time.Second * 10
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s database: %w", cc.Type, err)
	}

	m.db = db
	m.sqlDB = sqlDB
	m.connected = true
	m.logger.Info("Database connected",
		"type", cc.Type, "host", cc.Host, "port", cc.Port, "dbname", cc.DBName)

	if cc.HealthCheckInterval > 0 {
		go m.healthCheckLoop(cc.HealthCheckInterval.AsDuration())
	}
	return nil
}

func (m *defaultDatabaseManager) createConnection(cc *ConnectionConfig) (*bun.DB, *sql.DB, error) {
	switch cc.Type {
	case "mysql":
		return m.createMySQLConnection(cc)
	case "postgres":
		return m.createPostgreSQLConnection(cc)
	case "sqlite":
		return m.createSQLiteConnection(cc)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %q", cc.Type)
	}
}

func (m *defaultDatabaseManager) createMySQLConnection(cc *ConnectionConfig) (*bun.DB, *sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cc.Username, cc.Password, cc.Host, cc.Port, cc.DBName,
		cc.ConnectTimeout, cc.ReadTimeout, cc.WriteTimeout)
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	return bun.NewDB(sqlDB, mysqldialect.New()), sqlDB, nil
}

func (m *defaultDatabaseManager) createPostgreSQLConnection(cc *ConnectionConfig) (*bun.DB, *sql.DB, error) {
	sslMode := cc.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		url.QueryEscape(cc.Username), url.QueryEscape(cc.Password),
		cc.Host, cc.Port, cc.DBName, sslMode, int(cc.ConnectTimeout.AsDuration().Seconds()))
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	return bun.NewDB(sqlDB, pgdialect.New()), sqlDB, nil
}

func (m *defaultDatabaseManager) createSQLiteConnection(cc *ConnectionConfig) (*bun.DB, *sql.DB, error) {
	// DBName is the file path; ":memory:" style DSNs pass through untouched.
	dsn := cc.DBName
	if dsn == "" {
		dsn = "song_graph.db"
	}
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), sqlDB, nil
}

// Disconnect stops the health check loop and closes the connection.
func (m *defaultDatabaseManager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.healthStopOnce.Do(func() { close(m.stopHealthCheck) })
	err := m.db.Close()
	m.connected = false
	m.db = nil
	m.sqlDB = nil
	m.logger.Info("Database disconnected")
	return err
}

// Reconnect retries the connection up to MaxReconnectTries times.
func (m *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	cc := &m.config.ConnectionConfig
	if err := m.Disconnect(); err != nil {
		m.logger.Warn("Error during disconnect before reconnect", "error", err.Error())
	}
	m.mu.Lock()
	m.stopHealthCheck = make(chan struct{})
	m.healthStopOnce = sync.Once{}
	m.mu.Unlock()

	var lastErr error
	tries := cc.MaxReconnectTries
	if tries < 1 {
		tries = 1
	}
	for i := 1; i <= tries; i++ {
		if err := m.Connect(ctx); err != nil {
			lastErr = err
			m.logger.Warn("Reconnect attempt failed",
				"attempt", i, "max", tries, "error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cc.ReconnectInterval.AsDuration()):
			}
			continue
		}
		m.logger.Info("Database reconnected", "attempt", i)
		return nil
	}
	return fmt.Errorf("failed to reconnect after %d attempts: %w", tries, lastErr)
}

// Ping verifies the connection is alive.
func (m *defaultDatabaseManager) Ping(ctx context.Context) error {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		return fmt.Errorf("database is not connected")
	}
	return sqlDB.PingContext(ctx)
}

// HealthCheck measures a ping round trip and snapshots pool state.
func (m *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{LastCheckTime: time.Now()}

	m.mu.RLock()
	sqlDB := m.sqlDB
	connected := m.connected
	m.mu.RUnlock()

	status.Connected = connected
	if sqlDB == nil {
		status.LastError = "database is not connected"
		m.storeHealth(status)
		return status
	}

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		status.LastError = err.Error()
		m.storeHealth(status)
		return status
	}
	status.ResponseTime = time.Since(start)
	status.Healthy = true

	stats := sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections

	m.storeHealth(status)
	return status
}

func (m *defaultDatabaseManager) storeHealth(status *HealthStatus) {
	m.mu.Lock()
	m.lastHealth = status
	m.mu.Unlock()
}

func (m *defaultDatabaseManager) healthCheckLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopHealthCheck:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			status := m.HealthCheck(ctx)
			cancel()
			if !status.Healthy {
				m.logger.Warn("Health check failed", "error", status.LastError)
				if m.config.ConnectionConfig.EnableReconnect {
					rctx, rcancel := context.WithTimeout(context.Background(), time.Minute)
					if err := m.Reconnect(rctx); err != nil {
						m.logger.Error("Automatic reconnect failed", "error", err.Error())
					}
					rcancel()
					return
				}
			} else {
				m.logger.Debug("Health check ok",
					"response_time", status.ResponseTime,
					"active", status.ActiveConns, "idle", status.IdleConns)
			}
		}
	}
}

// GetDB returns the bun handle, or nil before Connect.
func (m *defaultDatabaseManager) GetDB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// GetSQLDB returns the raw sql.DB handle, or nil before Connect.
func (m *defaultDatabaseManager) GetSQLDB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sqlDB
}

// RunMigrations runs the versioned schema migrations.
func (m *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := m.GetDB()
	if db == nil {
		return fmt.Errorf("database is not connected")
	}
	return runMigrations(ctx, db, m.config, m.logger)
}

// InitData seeds the database from the configured SQL directory.
func (m *defaultDatabaseManager) InitData(ctx context.Context) error {
	db := m.GetDB()
	if db == nil {
		return fmt.Errorf("database is not connected")
	}
	mgr := NewSQLInitManager(db, &m.config.DataInitConfig, m.logger)
	return mgr.Execute(ctx)
}

// GetStats snapshots database/sql pool statistics.
func (m *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := m.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}
	s := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDuration:      s.WaitDuration,
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxIdleTimeClosed: s.MaxIdleTimeClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

// SetLogger replaces the manager logger.
func (m *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	m.mu.Lock()
	m.logger = logger
	m.mu.Unlock()
}
