package viaggiatreno

// StationRecord is a station as returned by both the elencoStazioni and
// dettaglioStazione endpoints.
type StationRecord struct {
	Code        string   `json:"codStazione"`
	RegionCode  int      `json:"codReg"`
	Locality    Locality `json:"localita"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	StationType int      `json:"tipoStazione"`
}

// Locality holds the display names of a station.
type Locality struct {
	LongName  string `json:"nomeLungo"`
	ShortName string `json:"nomeBreve"`
}

// PlaceholderStationType marks entries of elencoStazioni that are not real
// stations and must be skipped.
const PlaceholderStationType = 4

// DepartureRecord is one train of a partenze (departure board) response.
type DepartureRecord struct {
	Number              int    `json:"numeroTreno"`
	OriginCode          string `json:"codOrigine"`
	Category            string `json:"categoriaDescrizione"`
	DepartureDateMillis int64  `json:"dataPartenzaTreno"`
	ClientCode          int    `json:"codiceCliente"`
	NotDeparted         bool   `json:"nonPartito"`
	Provision           int    `json:"provvedimento"`
	NumberChangesImg    string `json:"compImgCambiNumerazione"`
}

// TrainStatus is the full train detail returned by andamentoTreno.
type TrainStatus struct {
	DestinationCode      string       `json:"idDestinazione"`
	Category             string       `json:"categoria"`
	ClientCode           int          `json:"codiceCliente"`
	NotDeparted          bool         `json:"nonPartito"`
	Provision            int          `json:"provvedimento"`
	Delay                int          `json:"ritardo"`
	LastDetectionStation string       `json:"stazioneUltimoRilevamento"`
	LastDetectionMillis  *int64       `json:"oraUltimoRilevamento"`
	Stops                []StopRecord `json:"fermate"`
}

// NoDetectionSentinel is the LastDetectionStation value meaning the train
// has not been detected anywhere yet.
const NoDetectionSentinel = "--"

// StopRecord is one stop of an andamentoTreno response.
type StopRecord struct {
	StationCode               string `json:"id"`
	StopType                  string `json:"tipoFermata"`
	PlatformExpectedArrival   string `json:"binarioProgrammatoArrivoDescrizione"`
	PlatformExpectedDeparture string `json:"binarioProgrammatoPartenzaDescrizione"`
	PlatformActualArrival     string `json:"binarioEffettivoArrivoDescrizione"`
	PlatformActualDeparture   string `json:"binarioEffettivoPartenzaDescrizione"`
	ArrivalExpectedMillis     *int64 `json:"arrivo_teorico"`
	ArrivalActualMillis       *int64 `json:"arrivoReale"`
	DepartureExpectedMillis   *int64 `json:"partenza_teorica"`
	DepartureActualMillis     *int64 `json:"partenzaReale"`
}
