package auxmonitor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/open-electrochem/picostat/pkg/config"
	probing "github.com/prometheus-community/pro-bing"
)

var (
	ErrThermostatNotConfigured = fmt.Errorf("thermostat not configured")
	ErrThermostatReadFailed    = fmt.Errorf("thermostat read failed")
	ErrThermostatUnreachable   = fmt.Errorf("thermostat unreachable")
)

var (
	cellTempMu       sync.Mutex
	lastCellTempDeg  float64
	lastCellReadTime time.Time
)

// IsThermostatConfigured checks if the cell thermostat configuration is set.
// This feature is optional, empty values as config are acceptable.
func IsThermostatConfigured() bool {
	return config.ActivePicostatAPIConfig.ThermostatIp != "" &&
		config.ActivePicostatAPIConfig.ThermostatModbusPort != 0
}

// ReadCellTemperature returns the measurement-cell temperature in degrees
// Celsius from the bench thermostat over modbus TCP.
func ReadCellTemperature() (float64, error) {
	if !IsThermostatConfigured() {
		return 0, ErrThermostatNotConfigured
	}

	// Use cached reads to avoid spamming the thermostat controller
	cellTempMu.Lock()
	defer cellTempMu.Unlock()
	if lastCellReadTime.After(time.Now().Add(-10 * time.Second)) {
		return lastCellTempDeg, nil
	}

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		// Ping check before attempting modbus connection
		if ok, _, err := ping(config.ActivePicostatAPIConfig.ThermostatIp); !ok || err != nil {
			lastErr = errors.Join(ErrThermostatUnreachable,
				fmt.Errorf("ping failed on attempt %d: %w", attempt+1, err))
			if attempt < maxRetries-1 {
				time.Sleep(2 * time.Second)
			}
			continue
		}

		host := config.ActivePicostatAPIConfig.ThermostatIp
		port := config.ActivePicostatAPIConfig.ThermostatModbusPort

		handler := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", host, port))
		handler.Timeout = 10 * time.Second
		handler.SlaveId = 1

		if err := handler.Connect(); err != nil {
			lastErr = fmt.Errorf("connection failed on attempt %d: %w", attempt+1, err)
			handler.Close()
			if attempt < maxRetries-1 {
				time.Sleep(2 * time.Second)
			}
			continue
		}

		client := modbus.NewClient(handler)

		// Process value register, temperature in centi-degrees
		result, err := client.ReadHoldingRegisters(100, 1)
		handler.Close()

		if err != nil {
			lastErr = fmt.Errorf("read temperature failed on attempt %d: %w", attempt+1, err)
			if attempt < maxRetries-1 {
				time.Sleep(2 * time.Second)
			}
			continue
		}

		raw := int16(uint16(result[0])<<8 | uint16(result[1]))
		temp := float64(raw) / 100.0
		lastCellTempDeg = temp
		lastCellReadTime = time.Now()
		return temp, nil
	}

	return 0, errors.Join(ErrThermostatReadFailed, lastErr)
}

func ping(host string) (bool, time.Duration, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false, 0, err
	}

	pinger.Count = 1
	pinger.Timeout = 2 * time.Second
	pinger.SetPrivileged(false) // UDP-based, no root needed

	err = pinger.Run()
	if err != nil {
		return false, 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv > 0 {
		return true, stats.AvgRtt, nil
	}

	return false, 0, fmt.Errorf("no response")
}
