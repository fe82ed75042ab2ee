package models

import "time"

// ServiceReport lives in the users/{uid}/serviceHistory sub-collection.
type ServiceReport struct {
	Key             string      `bson:"_id" json:"-"`
	Parent          string      `bson:"_parent" json:"-"`
	ID              string      `bson:"_docId" json:"id"`
	CustomerID      string      `bson:"customerId" json:"customerId"`
	CarID           string      `bson:"carId" json:"carId"`
	Car             CarSnapshot `bson:"car" json:"car"`
	Mechanic        Identity    `bson:"mechanic" json:"mechanic"`
	Diagnosis       string      `bson:"diagnosis" json:"diagnosis"`
	WorkPerformed   string      `bson:"workPerformed" json:"workPerformed"`
	Recommendations string      `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
	LaborHours      float64     `bson:"laborHours" json:"laborHours"`
	LaborRate       float64     `bson:"laborRate,omitempty" json:"laborRate,omitempty"`
	LaborCost       float64     `bson:"laborCost" json:"laborCost"`
	PartsUsed       []PartLine  `bson:"partsUsed" json:"partsUsed"`
	PartsCost       float64     `bson:"partsCost" json:"partsCost"`
	TotalCost       float64     `bson:"totalCost" json:"totalCost"`
	ServiceDate     time.Time   `bson:"serviceDate" json:"serviceDate"`
	CreatedAt       time.Time   `bson:"createdAt" json:"createdAt"`
}
