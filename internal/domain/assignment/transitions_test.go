package assignment

import (
	"errors"
	"reflect"
	"testing"
)

func TestCheck(t *testing.T) {
	acked := Acknowledgment{Acknowledged: true, Method: AckSystemAcceptance}

	tests := []struct {
		name   string
		op     Op
		a      Assignment
		want   error
		reason string
	}{
		{"mark in use before ack", OpMarkInUse, Assignment{Status: StatusAssigned}, ErrInvalidTransition, "acknowledgment required"},
		{"mark in use after ack", OpMarkInUse, Assignment{Status: StatusAssigned, Acknowledgment: acked}, nil, ""},
		{"ack twice", OpAcknowledge, Assignment{Status: StatusAssigned, Acknowledgment: acked}, ErrAlreadyAcknowledged, ""},
		{"ack repeated after in use", OpAcknowledge, Assignment{Status: StatusInUse, Acknowledgment: acked}, ErrAlreadyAcknowledged, ""},
		{"ack from maintenance", OpAcknowledge, Assignment{Status: StatusMaintenance}, ErrInvalidTransition, "not allowed from maintenance"},
		{"initiate from in use", OpInitiateReturn, Assignment{Status: StatusInUse}, nil, ""},
		{"initiate twice", OpInitiateReturn, Assignment{Status: StatusInUse, Return: ReturnProcess{Initiated: true}}, ErrInvalidTransition, "return already initiated"},
		{"initiate from damaged", OpInitiateReturn, Assignment{Status: StatusDamaged}, ErrInvalidTransition, "not allowed from damaged"},
		{"complete before initiate", OpCompleteReturn, Assignment{Status: StatusInUse}, ErrInvalidTransition, "return not initiated"},
		{"complete after initiate", OpCompleteReturn, Assignment{Status: StatusAssigned, Return: ReturnProcess{Initiated: true}}, nil, ""},
		{"complete from damaged with pending return", OpCompleteReturn, Assignment{Status: StatusDamaged, Return: ReturnProcess{Initiated: true}}, ErrInvalidTransition, "not allowed from damaged"},
		{"complete from maintenance with pending return", OpCompleteReturn, Assignment{Status: StatusMaintenance, Return: ReturnProcess{Initiated: true}}, ErrInvalidTransition, "not allowed from maintenance"},
		{"record maintenance with pending return", OpRecordMaintenance, Assignment{Status: StatusInUse, Return: ReturnProcess{Initiated: true}}, nil, ""},
		{"complete when returned", OpCompleteReturn, Assignment{Status: StatusReturned, Return: ReturnProcess{Initiated: true, Completed: true}}, ErrInvalidTransition, "already returned"},
		{"maintenance when returned", OpRecordMaintenance, Assignment{Status: StatusReturned}, ErrInvalidTransition, "already returned"},
		{"maintenance when assigned", OpRecordMaintenance, Assignment{Status: StatusAssigned}, nil, ""},
		{"start maintenance from assigned", OpStartMaintenance, Assignment{Status: StatusAssigned}, ErrInvalidTransition, "not allowed from assigned"},
		{"return to service from damaged", OpReturnToService, Assignment{Status: StatusDamaged}, nil, ""},
		{"incident on lost", OpReportIncident, Assignment{Status: StatusLost}, ErrInvalidTransition, "not allowed from lost"},
		{"lost from maintenance", OpMarkLost, Assignment{Status: StatusMaintenance}, nil, ""},
		{"lost from returned", OpMarkLost, Assignment{Status: StatusReturned}, ErrInvalidTransition, "already returned"},
		{"damaged twice", OpMarkDamaged, Assignment{Status: StatusDamaged}, ErrInvalidTransition, "not allowed from damaged"},
		{"resolve with nothing open", OpResolveIncident, Assignment{Status: StatusLost}, ErrInvalidTransition, "no unresolved incident"},
		{"resolve on lost", OpResolveIncident, Assignment{Status: StatusLost, Incidents: []IncidentRecord{{IncidentID: "i1"}}}, nil, ""},
		{"transfer from in use", OpTransfer, Assignment{Status: StatusInUse}, nil, ""},
		{"transfer from maintenance", OpTransfer, Assignment{Status: StatusMaintenance}, ErrInvalidTransition, "not allowed from maintenance"},
		{"transfer when returned", OpTransfer, Assignment{Status: StatusReturned}, ErrInvalidTransition, "already returned"},
		{"clearance before return", OpIssueClearance, Assignment{Status: StatusInUse}, ErrInvalidTransition, "not allowed from in_use"},
		{"clearance after return", OpIssueClearance, Assignment{Status: StatusReturned}, nil, ""},
		{"clearance twice", OpIssueClearance, Assignment{Status: StatusReturned, Clearance: Clearance{Issued: true}}, ErrInvalidTransition, "clearance already issued"},
		{"clearance with open incident", OpIssueClearance, Assignment{Status: StatusReturned, Incidents: []IncidentRecord{{IncidentID: "i1"}}}, ErrInvalidTransition, "unresolved incident"},
		{"unknown op", Op("teleport"), Assignment{Status: StatusAssigned}, ErrInvalidTransition, "unknown operation"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.op, &tt.a)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			if tt.reason != "" {
				var ite *InvalidTransitionError
				if !errors.As(err, &ite) {
					t.Fatalf("want *InvalidTransitionError, got %T", err)
				}
				if ite.Reason != tt.reason || ite.Op != tt.op || ite.Current != tt.a.Status {
					t.Fatalf("got %+v", ite)
				}
			}
		})
	}
}

func TestTarget(t *testing.T) {
	cases := []struct {
		op   Op
		from Status
		want Status
	}{
		{OpAcknowledge, StatusAssigned, StatusAssigned},
		{OpMarkInUse, StatusAssigned, StatusInUse},
		{OpInitiateReturn, StatusInUse, StatusInUse},
		{OpCompleteReturn, StatusInUse, StatusReturned},
		{OpRecordMaintenance, StatusDamaged, StatusDamaged},
		{OpStartMaintenance, StatusInUse, StatusMaintenance},
		{OpReturnToService, StatusMaintenance, StatusInUse},
		{OpMarkLost, StatusDamaged, StatusLost},
		{OpMarkDamaged, StatusInUse, StatusDamaged},
		{OpTransfer, StatusAssigned, StatusReturned},
		{OpIssueClearance, StatusReturned, StatusReturned},
	}
	for _, c := range cases {
		if got := Target(c.op, c.from); got != c.want {
			t.Fatalf("%s from %s: got %s want %s", c.op, c.from, got, c.want)
		}
	}
}

func TestAvailableOps(t *testing.T) {
	fresh := &Assignment{Status: StatusAssigned}
	want := []Op{OpAcknowledge, OpInitiateReturn, OpTransfer, OpRecordMaintenance, OpReportIncident, OpMarkLost, OpMarkDamaged}
	if got := AvailableOps(fresh); !reflect.DeepEqual(got, want) {
		t.Fatalf("fresh: got %v want %v", got, want)
	}

	returned := &Assignment{Status: StatusReturned, Return: ReturnProcess{Initiated: true, Completed: true}}
	if got := AvailableOps(returned); !reflect.DeepEqual(got, []Op{OpIssueClearance}) {
		t.Fatalf("returned: got %v", got)
	}
	returned.Clearance.Issued = true
	if got := AvailableOps(returned); len(got) != 0 {
		t.Fatalf("cleared: got %v", got)
	}

	inUse := &Assignment{
		Status:         StatusInUse,
		Acknowledgment: Acknowledgment{Acknowledged: true},
		Return:         ReturnProcess{Initiated: true},
		Incidents:      []IncidentRecord{{IncidentID: "i1", Resolved: true}, {IncidentID: "i2"}},
	}
	want = []Op{OpCompleteReturn, OpTransfer, OpRecordMaintenance, OpStartMaintenance, OpReportIncident, OpResolveIncident, OpMarkLost, OpMarkDamaged}
	if got := AvailableOps(inUse); !reflect.DeepEqual(got, want) {
		t.Fatalf("in use: got %v want %v", got, want)
	}
}
