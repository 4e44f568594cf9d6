package domain

// State — сериализуемый документ конфигурации планировщика.
//
// Это контракт хранения и обмена: repo кладёт State в Postgres как
// JSONB, API отдаёт его клиентам. Round-trip через State обязан
// воспроизводить ротации, units и курсоры без потерь.
type State struct {
	Rotations []*Rotation `json:"rotations"`
}

// Clone возвращает глубокую копию документа.
func (s State) Clone() State {
	c := State{Rotations: make([]*Rotation, len(s.Rotations))}
	for i, r := range s.Rotations {
		c.Rotations[i] = r.Clone()
	}
	return c
}
