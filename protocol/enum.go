package protocol

import "fmt"

// Zero value of every enum is "unset": never valid on the wire,
// means "do not change" in SetState.

type FanMode uint8

const (
	FanModeOff FanMode = iota + 1
	FanModeFan
	FanModeAuto
)

type FanState uint8

const (
	FanStateOff FanState = iota + 1
	FanStateOn
)

// FanSpeed 1..10 are manual speeds.
type FanSpeed uint8

const (
	FanSpeedMin  FanSpeed = 1
	FanSpeedMax  FanSpeed = 10
	FanSpeedAuto FanSpeed = 0xff
)

type QualityTarget uint8

const (
	QualityTargetNormal QualityTarget = iota + 1
	QualityTargetHigh
	QualityTargetBetter
)

// Switch is plain ON/OFF used by oscillation, air quality monitoring, night mode.
type Switch uint8

const (
	SwitchOff Switch = iota + 1
	SwitchOn
)

type HeatMode uint8

const (
	HeatModeOff HeatMode = iota + 1
	HeatModeOn
)

type HeatState uint8

const (
	HeatStateOff HeatState = iota + 1
	HeatStateOn
)

type FanFocusMode uint8

const (
	FanFocusWide FanFocusMode = iota + 1
	FanFocusOn
)

type TiltState uint8

const (
	TiltStateOK TiltState = iota + 1
	TiltStateTilted
)

func fanSpeedTokens() map[FanSpeed]string {
	m := map[FanSpeed]string{FanSpeedAuto: "AUTO"}
	for s := FanSpeedMin; s <= FanSpeedMax; s++ {
		m[s] = fmt.Sprintf("%04d", s)
	}
	return m
}

func switchTokens() map[Switch]string {
	return map[Switch]string{SwitchOff: "OFF", SwitchOn: "ON"}
}

// product-state field rules
var (
	fanModeCoder          = newEnum("fmod", map[FanMode]string{FanModeOff: "OFF", FanModeFan: "FAN", FanModeAuto: "AUTO"})
	fanStateCoder         = newEnum("fnst", map[FanState]string{FanStateOff: "OFF", FanStateOn: "FAN"})
	fanSpeedCoder         = newEnum("fnsp", fanSpeedTokens())
	qualityTargetCoder    = newEnum("qtar", map[QualityTarget]string{QualityTargetNormal: "0004", QualityTargetHigh: "0003", QualityTargetBetter: "0001"})
	oscillationCoder      = newEnum("oson", switchTokens())
	airQualityCoder       = newEnum("rhtm", switchTokens())
	filterLifeCoder       = newDecimal("filf", 4, false)
	errorCodeCoder        = newText("ercd")
	nightModeCoder        = newEnum("nmod", switchTokens())
	warningCodeCoder      = newText("wacd")
	heatModeCoder         = newEnum("hmod", map[HeatMode]string{HeatModeOff: "OFF", HeatModeOn: "HEAT"})
	heatTargetCoder       = newScaled("hmax", 10, 4)
	heatStateCoder        = newEnum("hsta", map[HeatState]string{HeatStateOff: "OFF", HeatStateOn: "HEAT"})
	fanFocusCoder         = newEnum("ffoc", map[FanFocusMode]string{FanFocusWide: "OFF", FanFocusOn: "On"}).alias("ON", FanFocusOn)
	tiltStateCoder        = newEnum("tilt", map[TiltState]string{TiltStateOK: "OK", TiltStateTilted: "TILT"})
	rssiCoder             = newDecimal("rssi", 0, true)
	scheduleResetCoder    = newText("srsc")
	scheduleDSTCoder      = newText("dstv")
	scheduleTimezoneCoder = newText("tzid")
)

func (v FanMode) String() string       { return fanModeCoder.format(v, "FanMode") }
func (v FanState) String() string      { return fanStateCoder.format(v, "FanState") }
func (v FanSpeed) String() string      { return fanSpeedCoder.format(v, "FanSpeed") }
func (v QualityTarget) String() string { return qualityTargetCoder.format(v, "QualityTarget") }
func (v Switch) String() string        { return oscillationCoder.format(v, "Switch") }
func (v HeatMode) String() string      { return heatModeCoder.format(v, "HeatMode") }
func (v HeatState) String() string     { return heatStateCoder.format(v, "HeatState") }
func (v FanFocusMode) String() string  { return fanFocusCoder.format(v, "FanFocusMode") }
func (v TiltState) String() string     { return tiltStateCoder.format(v, "TiltState") }

func ParseFanMode(token string) (FanMode, error)             { return fanModeCoder.Decode(token) }
func ParseFanSpeed(token string) (FanSpeed, error)           { return fanSpeedCoder.Decode(token) }
func ParseQualityTarget(token string) (QualityTarget, error) { return qualityTargetCoder.Decode(token) }
func ParseSwitch(token string) (Switch, error)               { return oscillationCoder.Decode(token) }
func ParseHeatMode(token string) (HeatMode, error)           { return heatModeCoder.Decode(token) }
func ParseFanFocusMode(token string) (FanFocusMode, error)   { return fanFocusCoder.Decode(token) }
