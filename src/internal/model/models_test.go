package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_Transitions(t *testing.T) {
	assert.True(t, RequestPending.CanTransitionTo(RequestAccepted))
	assert.True(t, RequestPending.CanTransitionTo(RequestCompleted))
	assert.True(t, RequestAccepted.CanTransitionTo(RequestCompleted))

	assert.False(t, RequestAccepted.CanTransitionTo(RequestPending))
	assert.False(t, RequestCompleted.CanTransitionTo(RequestPending))
	assert.False(t, RequestCompleted.CanTransitionTo(RequestAccepted))
	assert.False(t, RequestCompleted.CanTransitionTo(RequestCompleted))
}

func TestRole_Capabilities(t *testing.T) {
	assert.True(t, RoleAdmin.Can(CapManageUsers))
	assert.True(t, RoleAdmin.Can(CapViewStats))
	assert.True(t, RoleAdmin.Can(CapViewLogs))
	assert.True(t, RoleAdmin.Can(CapManageReports))

	assert.False(t, RoleManager.Can(CapManageUsers))
	assert.True(t, RoleManager.Can(CapViewStats))
	assert.True(t, RoleManager.Can(CapViewLogs))
	assert.True(t, RoleManager.Can(CapManageReports))

	for _, r := range []Role{RolePIN, RoleCSR} {
		assert.False(t, r.Can(CapManageUsers))
		assert.False(t, r.Can(CapViewStats))
		assert.False(t, r.Can(CapViewLogs))
		assert.False(t, r.Can(CapManageReports))
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RolePIN, RoleCSR, RoleAdmin, RoleManager} {
		assert.True(t, ValidRole(r))
	}
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}

func TestFrequencyInterval(t *testing.T) {
	assert.Equal(t, 24*time.Hour, FrequencyDaily.Interval())
	assert.Equal(t, 7*24*time.Hour, FrequencyWeekly.Interval())
	assert.Equal(t, 30*24*time.Hour, FrequencyMonthly.Interval())
}
