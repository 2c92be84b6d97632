package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&TrajectorySample{},
	&FiredAction{},
}

////////////////////////
// RUN MODELS
////////////////////////

// Run is one executed simulate directive
type Run struct {
	gorm.Model
	UUID        string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	Flight      string         `json:"flight" gorm:"size:127;index:idx_run_flight"`
	StartTime   time.Time      `json:"startTime" gorm:"index:idx_run_start_time"`
	EndTime     sql.NullTime   `json:"endTime"`
	Dt          float64        `json:"dt"`
	Rocket      datatypes.JSON `json:"rocket"`
	Environment datatypes.JSON `json:"environment"`
	Display     datatypes.JSON `json:"display"`
	Reports     datatypes.JSON `json:"reports"`

	// summary, filled when the run ends
	MaxAltitude   float64 `json:"maxAltitude"`
	Range         float64 `json:"range"`
	FlightTime    float64 `json:"flightTime"`
	PathLength    float64 `json:"pathLength"`
	Ticks         int     `json:"ticks"`
	Landed        bool    `json:"landed"`
	FuelRemaining float64 `json:"fuelRemaining"`

	Samples []TrajectorySample `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:RunID"`
	Fired   []FiredAction      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:RunID"`
}

func (*Run) TableName() string {
	return "runs"
}

// TrajectorySample is one recorded position of a run
type TrajectorySample struct {
	ID    uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID uint    `json:"runId" gorm:"index:idx_sample_run_id"`
	Idx   int     `json:"idx" gorm:"index:idx_sample_idx"`
	Time  float64 `json:"time"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (*TrajectorySample) TableName() string {
	return "trajectory_samples"
}

// FiredAction is a flight plan action the engine applied during a run
type FiredAction struct {
	ID           uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID        uint    `json:"runId" gorm:"index:idx_fired_run_id"`
	Time         float64 `json:"time"`
	Altitude     float64 `json:"altitude"`
	Trigger      string  `json:"trigger" gorm:"size:16"`
	TriggerValue float64 `json:"triggerValue"`
	Property     string  `json:"property" gorm:"size:16"`
	Value        float64 `json:"value"`
}

func (*FiredAction) TableName() string {
	return "fired_actions"
}
