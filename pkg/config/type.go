package config

type PicostatAPIConfig struct {
	// Empty device means auto-detect the port by USB description.
	SerialDevice  string `toml:"serial_device"`
	Baudrate      int    `toml:"baudrate"`
	ReadTimeoutMs int    `toml:"read_timeout_ms"`
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	// "low_range" or "high_range"
	DeviceModel string `toml:"device_model"`
	// Optional Modbus-TCP thermostat bath for cell temperature readings.
	ThermostatIp         string `toml:"thermostat_ip"`
	ThermostatModbusPort int    `toml:"thermostat_modbus_port"`
}

type ResultCollectorConfig struct {
	PicostatAPIHost string `toml:"picostat_api_host"`
	TLSEnabled      bool   `toml:"tls_enabled"`
}
