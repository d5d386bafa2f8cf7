package system

import "testing"

type recordSystem struct {
	name string
	log  *[]string
}

func (r recordSystem) Update(float64) {
	*r.log = append(*r.log, r.name)
}

func TestSchedulerOrder(t *testing.T) {
	var log []string
	s := NewScheduler(recordSystem{"a", &log}, nil, recordSystem{"b", &log})
	s.Add(nil)
	s.Add(recordSystem{"c", &log})
	s.Update(0.01)

	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Fatalf("expected [a b c], got %v", log)
	}
	if len(s.Systems()) != 3 {
		t.Fatalf("expected 3 systems, got %d", len(s.Systems()))
	}
}
