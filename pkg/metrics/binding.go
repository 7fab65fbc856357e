package metrics

// Subscriber receives change notifications from a Publisher. Implementations
// must be comparable (pointer types) so they can be unsubscribed by identity.
type Subscriber interface {
	OnUpdate()
}

// Publisher fans a change notification out to its current subscribers. It keeps
// no ownership of them: a subscriber stays registered only until it calls
// Unsubscribe, normally from its own Close.
type Publisher struct {
	subscribers []Subscriber
	notifying   int
	holes       bool
}

// Subscribe registers s. Subscribers are notified in registration order.
func (p *Publisher) Subscribe(s Subscriber) {
	p.subscribers = append(p.subscribers, s)
}

// Unsubscribe removes s. It is safe to call from inside s.OnUpdate while a
// notification is being delivered.
func (p *Publisher) Unsubscribe(s Subscriber) {
	for i, sub := range p.subscribers {
		if sub != s {
			continue
		}
		if p.notifying > 0 {
			p.subscribers[i] = nil
			p.holes = true
		} else {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
		}
		return
	}
}

// Notify synchronously calls OnUpdate on every subscriber.
func (p *Publisher) Notify() {
	p.notifying++
	for i := 0; i < len(p.subscribers); i++ {
		if sub := p.subscribers[i]; sub != nil {
			sub.OnUpdate()
		}
	}
	p.notifying--

	if p.notifying == 0 && p.holes {
		live := p.subscribers[:0]
		for _, sub := range p.subscribers {
			if sub != nil {
				live = append(live, sub)
			}
		}
		clear(p.subscribers[len(live):])
		p.subscribers = live
		p.holes = false
	}
}

// Subscribers reports how many subscribers are currently registered.
func (p *Publisher) Subscribers() int {
	n := 0
	for _, sub := range p.subscribers {
		if sub != nil {
			n++
		}
	}
	return n
}

// Binding ties a callback to a gauge for as long as the binding is open.
type Binding struct {
	gauge    Gauge
	callback func(Gauge)
}

// Bind subscribes callback to g and fires it once immediately, so the consumer
// always starts from the current value.
func Bind(g Gauge, callback func(Gauge)) *Binding {
	b := &Binding{gauge: g, callback: callback}
	g.Subscribe(b)
	b.OnUpdate()
	return b
}

// OnUpdate implements Subscriber.
func (b *Binding) OnUpdate() {
	b.callback(b.gauge)
}

// Gauge returns the bound gauge.
func (b *Binding) Gauge() Gauge {
	return b.gauge
}

// Close stops delivering updates. Closing a nil or closed binding is a no-op.
func (b *Binding) Close() {
	if b == nil || b.gauge == nil {
		return
	}
	b.gauge.Unsubscribe(b)
	b.gauge = nil
}
