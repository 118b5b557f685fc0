package model

// Feature band names. These are the predictor and target field names used in
// sampling, training, and classification requests.
const (
	BandStart      = "start"      // class code at the first epoch
	BandEnd        = "end"        // class code at the second epoch (training label)
	BandTransition = "transition" // encoded transition code
	BandElevation  = "elevation"  // terrain elevation, meters
	BandYearOf     = "yearof"     // year of observed change, 0 where unchanged
)

// PredictorBands is the ordered list of predictor fields fed to the
// classifier. The target field (BandEnd) is deliberately absent.
var PredictorBands = []string{BandStart, BandTransition, BandElevation, BandYearOf}

// FeatureRecord is one sampled point with named numeric fields. Records
// coming back from the compute engine are dynamic; they are converted to this
// type, and validated, at the ingestion boundary.
type FeatureRecord struct {
	Start      int     `json:"start"`
	Transition int     `json:"transition"`
	Elevation  float64 `json:"elevation"`
	YearOf     int     `json:"yearof"`
	End        int     `json:"end,omitempty"`
	Labeled    bool    `json:"labeled"` // true when End carries a training label
	Rand       float64 `json:"rand"`    // uniform [0,1) split field
}

// AreaRecord is the per-epoch, per-class area aggregate consumed by the
// chart and report layers.
type AreaRecord struct {
	Year         int     `json:"year"`
	ClassCode    int     `json:"class_code"`
	ClassName    string  `json:"class_name"`
	AreaHectares float64 `json:"area_hectares"`
}
