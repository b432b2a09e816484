package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Command is closed set of controller originated requests:
// RequestCurrentState, RequestSensorData, SetState.
type Command interface {
	Kind() Kind
	command()
}

type RequestCurrentState struct{ Time time.Time }

type RequestSensorData struct{ Time time.Time }

// DefaultModeReason marks changes made by local application.
const DefaultModeReason = "LAPP"

// SetState changes device settings. Zero value fields are left unchanged.
// HeatTargetKelvin zero means unset.
type SetState struct {
	Time       time.Time
	ModeReason string

	FanMode              FanMode
	FanSpeed             FanSpeed
	QualityTarget        QualityTarget
	Oscillation          Switch
	AirQualityMonitoring Switch
	NightMode            Switch
	HeatMode             HeatMode
	HeatTargetKelvin     float64
	FanFocus             FanFocusMode
}

func (RequestCurrentState) Kind() Kind { return KindRequestCurrentState }
func (RequestSensorData) Kind() Kind   { return KindRequestSensorData }
func (SetState) Kind() Kind            { return KindStateSet }

func (RequestCurrentState) command() {}
func (RequestSensorData) command()   {}
func (SetState) command()            {}

type wireRequest struct {
	Msg  Kind   `json:"msg"`
	Time string `json:"time"`
}

type wireStateSet struct {
	Msg        Kind              `json:"msg"`
	Time       string            `json:"time"`
	ModeReason string            `json:"mode-reason"`
	Data       map[string]string `json:"data"`
}

// Encode renders command with exact wire names and token widths,
// e.g. fan speed 7 is "0007".
func Encode(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case RequestCurrentState:
		return encodeRequest(c.Kind(), c.Time)

	case RequestSensorData:
		return encodeRequest(c.Kind(), c.Time)

	case SetState:
		return encodeSetState(c)

	default:
		return nil, fmt.Errorf("protocol: encode unsupported command %T", cmd)
	}
}

func checkTime(kind Kind, t time.Time) error {
	if t.IsZero() {
		return &FieldError{Kind: kind, Field: "time", Err: ErrMissingField}
	}
	return nil
}

func encodeRequest(kind Kind, t time.Time) ([]byte, error) {
	if err := checkTime(kind, t); err != nil {
		return nil, err
	}
	return json.Marshal(wireRequest{Msg: kind, Time: FormatTime(t)})
}

func encodeSetState(c SetState) ([]byte, error) {
	if err := checkTime(KindStateSet, c.Time); err != nil {
		return nil, err
	}
	w := &fieldWriter{kind: KindStateSet}
	const prefix = "data."
	data := make(map[string]string, 9)
	if c.FanMode != 0 {
		data[fanModeCoder.field] = enumToken(w, prefix, fanModeCoder, c.FanMode)
	}
	if c.FanSpeed != 0 {
		data[fanSpeedCoder.field] = enumToken(w, prefix, fanSpeedCoder, c.FanSpeed)
	}
	if c.QualityTarget != 0 {
		data[qualityTargetCoder.field] = enumToken(w, prefix, qualityTargetCoder, c.QualityTarget)
	}
	if c.Oscillation != 0 {
		data[oscillationCoder.field] = enumToken(w, prefix, oscillationCoder, c.Oscillation)
	}
	if c.AirQualityMonitoring != 0 {
		data[airQualityCoder.field] = enumToken(w, prefix, airQualityCoder, c.AirQualityMonitoring)
	}
	if c.NightMode != 0 {
		data[nightModeCoder.field] = enumToken(w, prefix, nightModeCoder, c.NightMode)
	}
	if c.HeatMode != 0 {
		data[heatModeCoder.field] = enumToken(w, prefix, heatModeCoder, c.HeatMode)
	}
	if c.HeatTargetKelvin != 0 {
		s, err := heatTargetCoder.Encode(c.HeatTargetKelvin)
		data[heatTargetCoder.field] = w.put(prefix+heatTargetCoder.field, s, err)
	}
	if c.FanFocus != 0 {
		data[fanFocusCoder.field] = enumToken(w, prefix, fanFocusCoder, c.FanFocus)
	}
	if w.err != nil {
		return nil, w.err
	}
	if len(data) == 0 {
		return nil, &FieldError{Kind: KindStateSet, Field: "data", Err: ErrEmptyCommand}
	}
	// produced tokens must pass the same rules device replies are decoded with
	for field, token := range data {
		rule, ok := LookupCoder(field)
		if !ok {
			panic("code error unregistered field " + field)
		}
		if err := rule.Check(token); err != nil {
			return nil, &FieldError{Kind: KindStateSet, Field: prefix + field, Err: err}
		}
	}
	reason := c.ModeReason
	if reason == "" {
		reason = DefaultModeReason
	}
	return json.Marshal(wireStateSet{Msg: KindStateSet, Time: FormatTime(c.Time), ModeReason: reason, Data: data})
}
