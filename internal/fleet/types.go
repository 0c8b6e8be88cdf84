// Package fleet holds the authoritative in-memory representation of the
// fleet: trucks, trailers, maintenance cases, and the expense ledger.
//
// The Store is a last-write-wins projection, not a database engine. It is
// the single source of truth at runtime; the persistence mirror (see
// internal/persist) is only ever written to or hydrated from.
package fleet

import (
	"github.com/shopspring/decimal"
)

// Location is a GPS point with an optional reverse-geocoded address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

// Truck is a tracked power unit. ID is the sole identity key; every other
// field is optional and may be overwritten by a later telemetry sync.
type Truck struct {
	ID       string    `json:"id"`
	VIN      string    `json:"vin,omitempty"`
	Make     string    `json:"make,omitempty"`
	Plate    string    `json:"plate,omitempty"`
	Name     string    `json:"name,omitempty"`
	Odo      *float64  `json:"odo,omitempty"` // meters
	Status   string    `json:"status,omitempty"`
	LastSeen string    `json:"lastSeen,omitempty"` // RFC 3339
	Location *Location `json:"location,omitempty"`
}

// merge applies the set fields of in over t. Unset fields (empty strings,
// nil pointers) leave the current value in place.
func (t Truck) merge(in Truck) Truck {
	if in.VIN != "" {
		t.VIN = in.VIN
	}
	if in.Make != "" {
		t.Make = in.Make
	}
	if in.Plate != "" {
		t.Plate = in.Plate
	}
	if in.Name != "" {
		t.Name = in.Name
	}
	if in.Odo != nil {
		t.Odo = in.Odo
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	if in.LastSeen != "" {
		t.LastSeen = in.LastSeen
	}
	if in.Location != nil {
		t.Location = in.Location
	}
	return t
}

// TruckPatch is a partial update for a truck. A nil field means "leave
// unchanged"; a set field overwrites.
type TruckPatch struct {
	VIN      *string   `json:"vin,omitempty"`
	Make     *string   `json:"make,omitempty"`
	Plate    *string   `json:"plate,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Odo      *float64  `json:"odo,omitempty"`
	Status   *string   `json:"status,omitempty"`
	LastSeen *string   `json:"lastSeen,omitempty"`
	Location *Location `json:"location,omitempty"`
}

func (t Truck) apply(p TruckPatch) Truck {
	if p.VIN != nil {
		t.VIN = *p.VIN
	}
	if p.Make != nil {
		t.Make = *p.Make
	}
	if p.Plate != nil {
		t.Plate = *p.Plate
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Odo != nil {
		t.Odo = p.Odo
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.LastSeen != nil {
		t.LastSeen = *p.LastSeen
	}
	if p.Location != nil {
		t.Location = p.Location
	}
	return t
}

// Trailer is a tracked trailer. Status is free text ("Ready", "In Shop",
// ...); Type is a free-text category such as "Dry Van" or "Reefer".
type Trailer struct {
	ID      string `json:"id"`
	Owner   string `json:"owner,omitempty"`
	ExtCode string `json:"extCode,omitempty"`
	Type    string `json:"type,omitempty"`
	Status  string `json:"status,omitempty"`
}

func (t Trailer) merge(in Trailer) Trailer {
	if in.Owner != "" {
		t.Owner = in.Owner
	}
	if in.ExtCode != "" {
		t.ExtCode = in.ExtCode
	}
	if in.Type != "" {
		t.Type = in.Type
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	return t
}

// TrailerPatch is a partial update for a trailer.
type TrailerPatch struct {
	Owner   *string `json:"owner,omitempty"`
	ExtCode *string `json:"extCode,omitempty"`
	Type    *string `json:"type,omitempty"`
	Status  *string `json:"status,omitempty"`
}

func (t Trailer) apply(p TrailerPatch) Trailer {
	if p.Owner != nil {
		t.Owner = *p.Owner
	}
	if p.ExtCode != nil {
		t.ExtCode = *p.ExtCode
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// Severity is a case urgency level.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
	SeverityUrgent   Severity = "Urgent"
)

// Stage is a case's position in its fixed linear lifecycle.
type Stage string

const (
	StageNew        Stage = "New"
	StageDiagnosing Stage = "Diagnosing"
	StageRepair     Stage = "Repair"
	StageQA         Stage = "QA"
	StageClosed     Stage = "Closed"
)

// Stages lists the lifecycle in order. Progression is strictly linear:
// no branches, no skipping backward.
var Stages = []Stage{StageNew, StageDiagnosing, StageRepair, StageQA, StageClosed}

// next returns the stage one step forward, clamped at the terminal stage.
func (s Stage) next() Stage {
	for i, st := range Stages {
		if st == s && i+1 < len(Stages) {
			return Stages[i+1]
		}
	}
	return StageClosed
}

// TimelineEntry is one immutable event in a case's audit trail.
type TimelineEntry struct {
	Text string `json:"text"`
	At   string `json:"at"` // RFC 3339
}

// InvoiceFile is the single file descriptor a case may carry.
type InvoiceFile struct {
	Name     string           `json:"name,omitempty"`
	Mime     string           `json:"mime,omitempty"`
	Size     int64            `json:"size,omitempty"`
	DataURL  string           `json:"dataUrl,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty"`
	DocID    string           `json:"docId,omitempty"`
}

// CaseItem is a maintenance case. AssetID is a weak reference to a truck
// or trailer id; no referential integrity is enforced. Timeline is
// append-only and chronological; it is never reordered or truncated.
type CaseItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	AssetID  string          `json:"assetId,omitempty"`
	Type     string          `json:"type,omitempty"`
	Severity Severity        `json:"severity"`
	Stage    Stage           `json:"stage"`
	OpenedAt string          `json:"openedAt"` // set at creation, immutable
	Until    string          `json:"until,omitempty"`
	UntilID  string          `json:"untilId,omitempty"`
	Timeline []TimelineEntry `json:"timeline"`
	Invoice  *InvoiceFile    `json:"invoice,omitempty"`
}

/// CasePatch is a partial update for a case. Stage is deliberately absent:
// stage changes go through the lifecycle methods so they always land in
// the timeline.
type CasePatch struct {
	Title    *string   `json:"title,omitempty"`
	AssetID  *string   `json:"assetId,omitempty"`
	Type     *string   `json:"type,omitempty"`
	Severity *Severity `json:"severity,omitempty"`
	Until    *string   `json:"until,omitempty"`
	UntilID  *string   `json:"untilId,omitempty"`
}

func (c CaseItem) apply(p CasePatch) CaseItem {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.AssetID != nil {
		c.AssetID = *p.AssetID
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Severity != nil {
		c.Severity = *p.Severity
	}
	if p.Until != nil {
		c.Until = *p.Until
	}
	if p.UntilID != nil {
		c.UntilID = *p.UntilID
	}
	return c
}

// LedgerEntry is a signed money movement. Ref is a YYYY-MM-DD grouping
// key; CaseID and AssetID are weak references.
type LedgerEntry struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"` // RFC 3339
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Type     string          `json:"type,omitempty"` // conventionally "expense" / "income"
	Kind     string          `json:"kind,omitempty"` // legacy alias for Type
	Category string          `json:"category,omitempty"`
	Note     string          `json:"note,omitempty"`
	Ref      string          `json:"ref,omitempty"`
	CaseID   string          `json:"caseId,omitempty"`
	AssetID  string          `json:"assetId,omitempty"`
}

// Settings is the process-wide configuration object. It is initialized to
// defaults at store creation and only ever mutated via merge-patch.
type Settings struct {
	SamsaraIDSource string `json:"samsaraIdSource"` // "name" or "licensePlate"
	TrailerDocsURL  string `json:"trailerDocsUrl,omitempty"`
	Units           string `json:"units"` // "imperial" or "metric"
	Theme           string `json:"theme"`
	CompanyName     string `json:"companyName,omitempty"`
}

// SettingsPatch is a merge-patch for Settings.
type SettingsPatch struct {
	SamsaraIDSource *string `json:"samsaraIdSource,omitempty"`
	TrailerDocsURL  *string `json:"trailerDocsUrl,omitempty"`
	Units           *string `json:"units,omitempty"`
	Theme           *string `json:"theme,omitempty"`
	CompanyName     *string `json:"companyName,omitempty"`
}

func (s Settings) apply(p SettingsPatch) Settings {
	if p.SamsaraIDSource != nil {
		s.SamsaraIDSource = *p.SamsaraIDSource
	}
	if p.TrailerDocsURL != nil {
		s.TrailerDocsURL = *p.TrailerDocsURL
	}
	if p.Units != nil {
		s.Units = *p.Units
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.CompanyName != nil {
		s.CompanyName = *p.CompanyName
	}
	return s
}

func defaultSettings() Settings {
	return Settings{
		SamsaraIDSource: "name",
		Units:           "imperial",
		Theme:           "light",
	}
}
