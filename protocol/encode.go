package protocol

import (
	"encoding/json"
	"fmt"
)

type wireHello struct {
	Msg Kind `json:"msg"`
	Hello
}

type wireCurrentState struct {
	Msg          Kind             `json:"msg"`
	Time         string           `json:"time"`
	ModeReason   string           `json:"mode-reason"`
	StateReason  string           `json:"state-reason"`
	Dial         string           `json:"dial"`
	RSSI         string           `json:"rssi"`
	ProductState wireProductState `json:"product-state"`
	Scheduler    Scheduler        `json:"scheduler"`
}

type wireProductState struct {
	FanMode              string `json:"fmod"`
	FanState             string `json:"fnst"`
	FanSpeed             string `json:"fnsp"`
	QualityTarget        string `json:"qtar"`
	Oscillation          string `json:"oson"`
	AirQualityMonitoring string `json:"rhtm"`
	FilterLife           string `json:"filf"`
	ErrorCode            string `json:"ercd"`
	NightMode            string `json:"nmod"`
	WarningCode          string `json:"wacd"`
	HeatMode             string `json:"hmod"`
	HeatTarget           string `json:"hmax"`
	HeatState            string `json:"hsta"`
	FanFocus             string `json:"ffoc"`
	Tilt                 string `json:"tilt"`
}

type wireSensorReading struct {
	Msg Kind `json:"msg"`
	SensorReading
}

// fieldWriter mirrors fieldReader: first coder failure sticks.
type fieldWriter struct {
	kind Kind
	err  error
}

func (w *fieldWriter) put(field string, s string, err error) string {
	if err != nil && w.err == nil {
		w.err = &FieldError{Kind: w.kind, Field: field, Err: err}
	}
	return s
}

func enumToken[T ~uint8](w *fieldWriter, path string, c *enumCoder[T], v T) string {
	s, err := c.Encode(v)
	return w.put(path+c.field, s, err)
}

// EncodeMessage is device side encoding, inverse of Decode.
func EncodeMessage(m Message) ([]byte, error) {
	switch x := m.(type) {
	case Hello:
		return json.Marshal(wireHello{Msg: KindHello, Hello: x})

	case CurrentState:
		return encodeCurrentState(x)

	case SensorReading:
		return json.Marshal(wireSensorReading{Msg: KindEnvironmentalSensorData, SensorReading: x})

	default:
		return nil, fmt.Errorf("protocol: encode unsupported message %T", m)
	}
}

func encodeCurrentState(m CurrentState) ([]byte, error) {
	w := &fieldWriter{kind: KindCurrentState}
	const ps = "product-state."
	p := m.ProductState
	rssi, err := rssiCoder.Encode(m.RSSI)
	wire := wireCurrentState{
		Msg:         KindCurrentState,
		Time:        m.Time,
		ModeReason:  m.ModeReason,
		StateReason: m.StateReason,
		Dial:        m.Dial,
		RSSI:        w.put(rssiCoder.field, rssi, err),
		Scheduler:   m.Scheduler,
	}
	filf, err := filterLifeCoder.Encode(p.FilterLifeHours)
	filf = w.put(ps+filterLifeCoder.field, filf, err)
	hmax, err := heatTargetCoder.Encode(p.HeatTargetKelvin)
	hmax = w.put(ps+heatTargetCoder.field, hmax, err)
	wire.ProductState = wireProductState{
		FanMode:              enumToken(w, ps, fanModeCoder, p.FanMode),
		FanState:             enumToken(w, ps, fanStateCoder, p.FanState),
		FanSpeed:             enumToken(w, ps, fanSpeedCoder, p.FanSpeed),
		QualityTarget:        enumToken(w, ps, qualityTargetCoder, p.QualityTarget),
		Oscillation:          enumToken(w, ps, oscillationCoder, p.Oscillation),
		AirQualityMonitoring: enumToken(w, ps, airQualityCoder, p.AirQualityMonitoring),
		FilterLife:           filf,
		ErrorCode:            p.ErrorCode,
		NightMode:            enumToken(w, ps, nightModeCoder, p.NightMode),
		WarningCode:          p.WarningCode,
		HeatMode:             enumToken(w, ps, heatModeCoder, p.HeatMode),
		HeatTarget:           hmax,
		HeatState:            enumToken(w, ps, heatStateCoder, p.HeatState),
		FanFocus:             enumToken(w, ps, fanFocusCoder, p.FanFocus),
		Tilt:                 enumToken(w, ps, tiltStateCoder, p.Tilt),
	}
	if w.err != nil {
		return nil, w.err
	}
	return json.Marshal(wire)
}
