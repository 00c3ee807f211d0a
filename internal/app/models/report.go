package models

// FacultyTally counts one faculty member's consultations by status
type FacultyTally struct {
	FacultyID int64                      `json:"faculty_id"`
	Name      string                     `json:"name"`
	Total     int                        `json:"total"`
	ByStatus  map[ConsultationStatus]int `json:"by_status"`
}

// ConsultationReport is the admin overview of consultations
type ConsultationReport struct {
	Consultations   []*Consultation            `json:"consultations"`
	Total           int                        `json:"total"`
	ByStatus        map[ConsultationStatus]int `json:"by_status"`
	ByFaculty       []FacultyTally             `json:"by_faculty"`
	FacultyStatuses []*FacultyStatus           `json:"faculty_statuses"`
}

// NewConsultationReport tallies list. Faculty tallies keep first-seen order.
func NewConsultationReport(list []*Consultation, statuses []*FacultyStatus) *ConsultationReport {
	r := &ConsultationReport{
		Consultations:   list,
		Total:           len(list),
		ByStatus:        make(map[ConsultationStatus]int, len(ConsultationStatuses)),
		ByFaculty:       []FacultyTally{},
		FacultyStatuses: statuses,
	}
	for _, s := range ConsultationStatuses {
		r.ByStatus[s] = 0
	}

	index := make(map[int64]int)
	for _, c := range list {
		r.ByStatus[c.Status]++
		i, ok := index[c.FacultyID]
		if !ok {
			i = len(r.ByFaculty)
			index[c.FacultyID] = i
			r.ByFaculty = append(r.ByFaculty, FacultyTally{
				FacultyID: c.FacultyID,
				Name:      c.FacultyName,
				ByStatus:  map[ConsultationStatus]int{},
			})
		}
		r.ByFaculty[i].Total++
		r.ByFaculty[i].ByStatus[c.Status]++
	}
	return r
}
