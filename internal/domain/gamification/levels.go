package gamification

// Tier es un escalón de la tabla de niveles.
type Tier struct {
	Name      string
	MinPoints int
}

// tiers debe estar ordenado por MinPoints ascendente y empezar en 0.
var tiers = []Tier{
	{Name: "Cachorro", MinPoints: 0},
	{Name: "Vecino Atento", MinPoints: 50},
	{Name: "Rastreador", MinPoints: 150},
	{Name: "Rescatista", MinPoints: 300},
	{Name: "Héroe Peludo", MinPoints: 600},
	{Name: "Leyenda", MinPoints: 1000},
}

// Level es el nivel calculado para un total de puntos.
type Level struct {
	Name      string
	MinPoints int
	NextName  string // vacío en el último nivel
	NextAt    int    // 0 en el último nivel
	Progress  int    // 0..100 dentro del nivel actual
}

// Tiers devuelve una copia de la tabla de niveles.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// LevelFor busca el nivel para un total acumulado. Totales negativos cuentan como 0.
func LevelFor(points int) Level {
	if points < 0 {
		points = 0
	}

	idx := 0
	for i, t := range tiers {
		if points >= t.MinPoints {
			idx = i
		}
	}

	cur := tiers[idx]
	lvl := Level{Name: cur.Name, MinPoints: cur.MinPoints, Progress: 100}
	if idx+1 < len(tiers) {
		next := tiers[idx+1]
		lvl.NextName = next.Name
		lvl.NextAt = next.MinPoints
		lvl.Progress = (points - cur.MinPoints) * 100 / (next.MinPoints - cur.MinPoints)
	}
	return lvl
}
