package openweathermap

// OpenWeatherMap 2.5 response structures. Only the fields the normalizer
// reads are decoded; anything missing decodes to its zero value.

// Condition is one entry of the provider's weather array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainData holds temperature, pressure and humidity readings.
type MainData struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

// WindData holds wind readings in m/s and degrees.
type WindData struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
	Gust  float64 `json:"gust"`
}

// CurrentResponse is the payload of the /weather endpoint.
type CurrentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather    []Condition `json:"weather"`
	Main       MainData    `json:"main"`
	Visibility *int        `json:"visibility"` // meters, omitted by OWM at some stations
	Wind       WindData    `json:"wind"`
	Dt         int64       `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"` // seconds east of UTC
	Name     string `json:"name"`
}

// ForecastItem is one 3-hour step of the /forecast endpoint.
type ForecastItem struct {
	Dt         int64       `json:"dt"`
	Main       MainData    `json:"main"`
	Weather    []Condition `json:"weather"`
	Wind       WindData    `json:"wind"`
	Visibility int         `json:"visibility"`
	Pop        float64     `json:"pop"` // probability of precipitation, 0..1
	DtTxt      string      `json:"dt_txt"`
}

// City describes the forecast location.
type City struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"` // seconds east of UTC
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
}

// ForecastResponse is the payload of the /forecast endpoint.
type ForecastResponse struct {
	Cnt  int            `json:"cnt"`
	List []ForecastItem `json:"list"`
	City City           `json:"city"`
}

// errorResponse is the body OpenWeatherMap sends with non-2xx statuses.
// cod is a number on some endpoints and a string on others.
type errorResponse struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}
