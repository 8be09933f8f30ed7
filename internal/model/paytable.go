package model

// Paytable лестница множителей для ставок на номинал.
// Steps[i] применяется к (i+1)-му попаданию ранга за раздачу.
type Paytable struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Steps []int  `json:"steps"`
}

func (p Paytable) Clone() Paytable {
	return Paytable{ID: p.ID, Name: p.Name, Steps: append([]int(nil), p.Steps...)}
}
