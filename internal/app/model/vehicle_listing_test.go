package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVehicleCondition_Valid(t *testing.T) {
	assert.True(t, ConditionNew.Valid())
	assert.True(t, ConditionSemiNew.Valid())
	assert.True(t, ConditionUsed.Valid())
	assert.False(t, VehicleCondition("Usado").Valid())
	assert.False(t, VehicleCondition("").Valid())
}

func TestIsValidVehicleType(t *testing.T) {
	assert.True(t, IsValidVehicleType("Sedán"))
	assert.True(t, IsValidVehicleType("Pick Up"))
	assert.False(t, IsValidVehicleType("sedan"))
}

func TestVehicleListing_BeforeCreate(t *testing.T) {
	v := &VehicleListing{}
	assert.NoError(t, v.BeforeCreate(nil))
	assert.Len(t, v.ID, 36)
	assert.Equal(t, ListingActive, v.Status)

	kept := &VehicleListing{ID: "fixed", Status: ListingInactive}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, ListingInactive, kept.Status)
}
