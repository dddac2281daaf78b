package sensor

// Ring is a fixed-capacity circular buffer of samples. Once full, new
// values overwrite the oldest.
type Ring struct {
	vals  []float64
	head  int
	count int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{vals: make([]float64, capacity)}
}

func (r *Ring) Push(v float64) {
	r.vals[r.head] = v
	r.head = (r.head + 1) % len(r.vals)
	if r.count < len(r.vals) {
		r.count++
	}
}

func (r *Ring) Average() float64 {
	if r.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < r.count; i++ {
		sum += r.vals[i]
	}
	return sum / float64(r.count)
}

func (r *Ring) Min() float64 {
	if r.count == 0 {
		return 0
	}
	min := r.vals[0]
	for i := 1; i < r.count; i++ {
		if r.vals[i] < min {
			min = r.vals[i]
		}
	}
	return min
}

func (r *Ring) Max() float64 {
	if r.count == 0 {
		return 0
	}
	max := r.vals[0]
	for i := 1; i < r.count; i++ {
		if r.vals[i] > max {
			max = r.vals[i]
		}
	}
	return max
}

func (r *Ring) Len() int { return r.count }

func (r *Ring) Cap() int { return len(r.vals) }

func (r *Ring) Full() bool { return r.count == len(r.vals) }

func (r *Ring) Clear() {
	r.head = 0
	r.count = 0
}
