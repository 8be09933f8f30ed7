package game

// gate пауза раздачи. Защищается мьютексом сессии.
// resume закрывается при снятии паузы и будит всех ожидающих в порядке их ожидания.
type gate struct {
	paused bool
	resume chan struct{}
}

func (g *gate) pause() bool {
	if g.paused {
		return false
	}
	g.paused = true
	g.resume = make(chan struct{})
	return true
}

func (g *gate) release() bool {
	if !g.paused {
		return false
	}
	g.paused = false
	close(g.resume)
	g.resume = nil
	return true
}

// wait канал ожидания снятия паузы, nil если пауза не стоит
func (g *gate) wait() <-chan struct{} {
	if !g.paused {
		return nil
	}
	return g.resume
}
