package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/open-electrochem/picostat/pkg/pathing"
)

var (
	ActivePicostatAPIConfig     *PicostatAPIConfig
	ActiveResultCollectorConfig *ResultCollectorConfig
)

func LoadPicostatAPIConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "picostat_api.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &PicostatAPIConfig{
			SerialDevice:         "", // auto-detect
			Baudrate:             230400,
			ReadTimeoutMs:        1000,
			ListenAddress:        "0.0.0.0",
			ListenPort:           9047,
			DeviceModel:          "low_range",
			ThermostatIp:         "",
			ThermostatModbusPort: 502,
		}
		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActivePicostatAPIConfig = cfg
		return nil
	}

	// Load existing config
	var config PicostatAPIConfig
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return err
	}
	ActivePicostatAPIConfig = &config
	return nil
}

func LoadResultCollectorConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "result_collector.toml")

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &ResultCollectorConfig{
			PicostatAPIHost: "localhost:9047",
			TLSEnabled:      false,
		}
		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		ActiveResultCollectorConfig = cfg
		return nil
	}

	// Load existing config
	var config ResultCollectorConfig
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return err
	}
	ActiveResultCollectorConfig = &config
	return nil
}
