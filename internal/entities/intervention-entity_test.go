package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregatePartsUsed(t *testing.T) {
	now := time.Now()
	history := []TechnicianWork{
		{TechnicianName: "Иванов", StartDate: now, PartsUsed: []PartUsage{{PartID: 7, Quantity: 2}, {PartID: 3, Quantity: 1}}},
		{TechnicianName: "Петров", StartDate: now, PartsUsed: []PartUsage{{PartID: 7, Quantity: 1}}},
		{TechnicianName: "Сидоров", StartDate: now},
	}

	assert.Equal(t, []PartUsage{{PartID: 3, Quantity: 1}, {PartID: 7, Quantity: 3}}, AggregatePartsUsed(history))
	assert.Empty(t, AggregatePartsUsed(nil))
}
