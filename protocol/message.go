// Package protocol decodes and encodes JSON messages of the device local channel.
//
// Every message carries "msg" discriminator and "time".
// Field values use device specific encodings: zero-padded decimal text,
// closed token sets, decikelvin temperatures. Rules live in field.go and enum.go.
//
// Functions here are pure and safe for concurrent use.
package protocol

import "time"

// Kind is value of "msg" discriminator.
type Kind string

const (
	KindHello                   Kind = "HELLO"
	KindCurrentState            Kind = "CURRENT-STATE"
	KindEnvironmentalSensorData Kind = "ENVIRONMENTAL-CURRENT-SENSOR-DATA"

	KindRequestCurrentState Kind = "REQUEST-CURRENT-STATE"
	KindRequestSensorData   Kind = "REQUEST-PRODUCT-ENVIRONMENT-CURRENT-SENSOR-DATA"
	KindStateSet            Kind = "STATE-SET"
)

// Message is closed set of device originated variants:
// Hello, CurrentState, SensorReading.
type Message interface {
	Kind() Kind
	Timestamp() string
	message()
}

type Hello struct {
	Time              string `json:"time"`
	Model             string `json:"model"`
	Version           string `json:"version"`
	Protocol          string `json:"protocol"`
	SerialNumber      string `json:"serialNumber"`
	MACAddress        string `json:"mac address"`
	ModuleHardware    string `json:"module hardware"`
	ModuleBootloader  string `json:"module bootloader"`
	ModuleSoftware    string `json:"module software"`
	ModuleNWP         string `json:"module nwp"`
	ProductHardware   string `json:"product hardware"`
	ProductBootloader string `json:"product bootloader"`
	ProductSoftware   string `json:"product software"`
	ResetSource       string `json:"reset-source"`
}

type CurrentState struct {
	Time         string
	ModeReason   string
	StateReason  string
	Dial         string
	RSSI         int
	ProductState ProductState
	Scheduler    Scheduler
}

type ProductState struct {
	FanMode              FanMode
	FanState             FanState
	FanSpeed             FanSpeed
	QualityTarget        QualityTarget
	Oscillation          Switch
	AirQualityMonitoring Switch
	FilterLifeHours      int
	ErrorCode            string
	NightMode            Switch
	WarningCode          string
	HeatMode             HeatMode
	HeatTargetKelvin     float64
	HeatState            HeatState
	FanFocus             FanFocusMode
	Tilt                 TiltState
}

// Scheduler values are opaque to us.
type Scheduler struct {
	ResetSchedule string `json:"srsc"`
	DST           string `json:"dstv"`
	TimezoneID    string `json:"tzid"`
}

type SensorReading struct {
	Time string        `json:"time"`
	Data SensorDataRaw `json:"data"`
}

// SensorDataRaw keeps tokens as sent. Use Values() for numbers.
type SensorDataRaw struct {
	Temperature string `json:"tact"`
	Humidity    string `json:"hact"`
	Dust        string `json:"pact"`
	VOC         string `json:"vact"`
	SleepTimer  string `json:"sltm"`
}

type EnvironmentCurrentSensorData struct {
	HumidityPercentage          float64
	Dust                        float64
	SleepTimer                  float64
	TemperatureKelvin           float64
	VolatileOrganicCompoundsPpm float64
}

// Values parses raw tokens leniently, see lenientFloat.
// Temperature is decikelvin on the wire.
func (raw SensorDataRaw) Values() EnvironmentCurrentSensorData {
	return EnvironmentCurrentSensorData{
		HumidityPercentage:          lenientFloat(raw.Humidity),
		Dust:                        lenientFloat(raw.Dust),
		SleepTimer:                  lenientFloat(raw.SleepTimer),
		TemperatureKelvin:           lenientFloat(raw.Temperature) / 10,
		VolatileOrganicCompoundsPpm: lenientFloat(raw.VOC),
	}
}

func (Hello) Kind() Kind         { return KindHello }
func (CurrentState) Kind() Kind  { return KindCurrentState }
func (SensorReading) Kind() Kind { return KindEnvironmentalSensorData }

func (m Hello) Timestamp() string         { return m.Time }
func (m CurrentState) Timestamp() string  { return m.Time }
func (m SensorReading) Timestamp() string { return m.Time }

func (Hello) message()         {}
func (CurrentState) message()  {}
func (SensorReading) message() {}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t as device expects, UTC with milliseconds.
func FormatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func ParseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
