package cloud

import "github.com/temoto/airlink/credential"

// UserCredentials is account login, Country is ISO 3166 code like "GB".
type UserCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country_code"`
}

// AccountCredentials are issued by Login and used as HTTP basic auth.
type AccountCredentials struct {
	Account  string `json:"Account"`
	Password string `json:"Password"`
}

type DeviceManifest struct {
	Serial              string `json:"Serial"`
	Name                string `json:"Name"`
	Version             string `json:"Version"`
	LocalCredentials    string `json:"LocalCredentials"`
	AutoUpdate          bool   `json:"AutoUpdate"`
	NewVersionAvailable bool   `json:"NewVersionAvailable"`
	ProductType         string `json:"ProductType"`
	ConnectionType      string `json:"ConnectionType"`
}

// Credentials decrypts local channel login of the device.
func (d DeviceManifest) Credentials() (credential.Local, error) {
	return credential.Decrypt(d.LocalCredentials)
}

type EnvironmentData struct {
	AqiDescription string  `json:"AqiDescription"`
	AqiName        string  `json:"AqiName"`
	AqiState       int     `json:"AqiState"`
	AqiValue       int     `json:"AqiValue"`
	ColorIndex     string  `json:"ColorIndex"`
	ColorValue     *string `json:"ColorValue"`
	DominantPollen string  `json:"DominantPollen"`
	Humidity       int     `json:"Humidity"`
	Icon           string  `json:"Icon"`
	LocationName   string  `json:"LocationName"`
	Measure        string  `json:"Measure"`
	Pm25Value      int     `json:"Pm25Value"`
	PollenState    int     `json:"PollenState"`
	Pollens        Pollens `json:"Pollens"`
	Temperature    float64 `json:"Temperature"`
	WeatherState   int     `json:"WeatherState"`
}

type Pollens struct {
	Grass string `json:"Grass"`
}

type EnvironmentHelp struct {
	AdditionalCopy           string                 `json:"AdditionalCopy"`
	AirQualityGuidelineLabel string                 `json:"AirQualityGuidelineLabel"`
	AirQualityGuidelineURL   string                 `json:"AirQualityGuidelineUrl"`
	Country                  string                 `json:"Country"`
	Default                  bool                   `json:"Default"`
	Description              string                 `json:"Description"`
	IntroCopy                string                 `json:"IntroCopy"`
	Measure                  string                 `json:"Measure"`
	Name                     string                 `json:"Name"`
	PollenGuidelineLabel     *string                `json:"PollenGuidelineLabel"`
	PollenGuidelineURL       string                 `json:"PollenGuidelineUrl"`
	Ranges                   []EnvironmentRangeHelp `json:"Ranges"`
}

type EnvironmentRangeHelp struct {
	Range       string  `json:"Range"`
	Name        string  `json:"Name"`
	Description string  `json:"Description"`
	ColorIndex  string  `json:"ColorIndex"`
	ColorValue  *string `json:"ColorValue"`
}

// Hourly series have nil gaps where device was offline.
type EnvironmentDaily struct {
	Aqi             []*float64 `json:"Aqi"`
	AverageAqi      *float64   `json:"AverageAqi"`
	AverageHumidity *int       `json:"AverageHumidity"`
	Date            string     `json:"Date"`
	Humidity        []*int     `json:"Humidity"`
	MaxTemperature  *int       `json:"MaxTemperature"`
	MinTemperature  *int       `json:"MinTemperature"`
	Temperature     []*int     `json:"Temperature"`
	TotalUsage      *int       `json:"TotalUsage"`
	Usage           []*int     `json:"Usage"`
}

type EnvironmentWeekly struct {
	Aqi            []*float64 `json:"Aqi"`
	AverageAqi     *float64   `json:"AverageAqi"`
	Date           string     `json:"Date"`
	Humidity       []*int     `json:"Humidity"`
	MaxHumidity    *int       `json:"MaxHumidity"`
	MaxTemperature *int       `json:"MaxTemperature"`
	MinHumidity    *int       `json:"MinHumidity"`
	MinTemperature *int       `json:"MinTemperature"`
	Temperature    []*int     `json:"Temperature"`
	TotalUsage     *int       `json:"TotalUsage"`
	Usage          []*int     `json:"Usage"`
}
