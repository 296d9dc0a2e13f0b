package state

import (
	"reliefops/bizerror"
	"reliefops/domain"
)

type Status struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type StatusTransition struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// StatusMachine holds one method's status vocabulary and transition graph as
// plain data. Correcting a graph means editing the table below, never a call
// site.
type StatusMachine struct {
	Method      domain.Method      `json:"method"`
	Statuses    []Status           `json:"statuses"`
	Transitions []StatusTransition `json:"transitions"`
}

func NewStatusMachine(method domain.Method, statuses []Status, transitions []StatusTransition) *StatusMachine {
	return &StatusMachine{Method: method, Statuses: statuses, Transitions: transitions}
}

func (m *StatusMachine) FindStatus(code string) (Status, bool) {
	for _, status := range m.Statuses {
		if status.Code == code {
			return status, true
		}
	}
	return Status{}, false
}

func (m *StatusMachine) AvailableTransitions(fromStatus string, toStatus string) []StatusTransition {
	r := []StatusTransition{}
	for _, transition := range m.Transitions {
		if (fromStatus == "" || fromStatus == transition.From) && (toStatus == "" || toStatus == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

// IsLegalTransition judges strictly against the graph: codes outside the
// vocabulary are errors, not coerced; absent pairs are illegal, including
// self-loops unless explicitly listed.
func (m *StatusMachine) IsLegalTransition(fromStatus string, toStatus string) (bool, error) {
	if _, found := m.FindStatus(fromStatus); !found {
		return false, bizerror.ErrUnknownStatusCode
	}
	if _, found := m.FindStatus(toStatus); !found {
		return false, bizerror.ErrUnknownStatusCode
	}
	return len(m.AvailableTransitions(fromStatus, toStatus)) > 0, nil
}

// InitialStatus is the entry status of the method, by convention the first
// status of the vocabulary.
func (m *StatusMachine) InitialStatus() Status {
	return m.Statuses[0]
}

var DonationStatusMachine = NewStatusMachine(domain.MethodDonation,
	[]Status{{Code: "E", Name: "Entered"}, {Code: "V", Name: "Verified"}, {Code: "P", Name: "Posted"}},
	[]StatusTransition{
		{Name: "verify", From: "E", To: "V"},
		{Name: "post", From: "V", To: "P"},
	})

// TransferStatusMachine: the canonical meaning of D (Draft or Dispatched)
// and C (Cancelled or Closed) is not confirmed in the upstream reference.
// The graph below only carries transitions defensible under both readings:
// D precedes V either way, and C is terminal either way. Unlisted pairs are
// rejected until the mapping is confirmed.
var TransferStatusMachine = NewStatusMachine(domain.MethodTransfer,
	[]Status{{Code: "D", Name: "D"}, {Code: "V", Name: "Verified"}, {Code: "P", Name: "Posted"}, {Code: "C", Name: "C"}},
	[]StatusTransition{
		{Name: "verify", From: "D", To: "V"},
		{Name: "post", From: "V", To: "P"},
		{Name: "terminate", From: "D", To: "C"},
		{Name: "terminate", From: "V", To: "C"},
	})

// statusMachines registers one machine per supported method. Procurement is
// deliberately absent: its vocabulary is undefined upstream, and an absent
// entry fails closed instead of borrowing another method's vocabulary.
var statusMachines = map[domain.Method]*StatusMachine{
	domain.MethodDonation: DonationStatusMachine,
	domain.MethodTransfer: TransferStatusMachine,
}

func MachineOf(method domain.Method) (*StatusMachine, error) {
	machine, found := statusMachines[method]
	if !found {
		return nil, bizerror.ErrUnsupportedMethod
	}
	return machine, nil
}

func IsLegalTransition(method domain.Method, fromStatus string, toStatus string) (bool, error) {
	machine, err := MachineOf(method)
	if err != nil {
		return false, err
	}
	return machine.IsLegalTransition(fromStatus, toStatus)
}
