package profiling

// ColumnProfile summarises one numeric column
type ColumnProfile struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"` // sample standard deviation
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"` // outside 1.5 IQR fences
}
