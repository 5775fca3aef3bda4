package ocean

import (
	"math"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// spawnCounterCurrents seeds eastward agents on the ITCZ: one behind every
// west coast plus a regular sampling of open-ocean columns.
func (m *monthRun) spawnCounterCurrents() []*agent {
	interval := max(1, m.g.Cols/m.phys.OceanSpawnColumnsDiv)
	var out []*agent
	for c := 0; c < m.g.Cols; c++ {
		r := m.g.RowOfLat(m.itcz[c])
		if r < 0 || r >= float64(m.g.Rows) {
			continue
		}
		x := float64(c)
		if m.field.Environment(x, r).Dist > m.phys.OceanSpawnMinDepthKm {
			continue
		}
		westCoast := m.field.At(c-1, int(math.Floor(r+0.5))) > 0
		if westCoast || c%interval == 0 {
			out = append(out, m.newAgent(core.AgentECC, x, r, m.phys.OceanBaseSpeed, 0))
		}
	}
	return out
}

// stepCounterCurrent advances an ECC agent by one macro-step. The agent is
// driven east and pulled toward the ITCZ; a head-on hit on an east coast ends
// it and records a seed for the equatorial currents.
func (m *monthRun) stepCounterCurrent(a *agent) {
	p := m.phys
	if !m.precheck(a, p.OceanEccStagnation) {
		return
	}

	for ss := 0; ss < p.OceanSubSteps; ss++ {
		targetY := m.g.RowOfLat(m.itczAt(a.x))
		vx := a.vx + p.OceanBaseSpeed*p.OceanEccDrive
		vy := a.vy + (targetY-a.y)*p.OceanPatternForce
		vx, vy = m.clampSpeed(vx, vy)

		nx, ny := a.x+vx*m.dt, a.y+vy*m.dt
		cur := m.field.Environment(a.x, a.y)
		next := m.field.Environment(nx, ny)

		switch {
		case next.Dist > 0 && cur.Dist <= 0:
			wx, wy, hx, hy := m.bisect(a.x, a.y, nx, ny)
			hit := m.field.Environment(hx, hy)
			nX, nY, _ := hit.Normal()
			vDotN := vx*nX + vy*nY
			if vx > 0 && hit.GX > p.OceanCoastFacing && vDotN > p.OceanImpactThreshold {
				m.recordImpact(hx, hy, core.ImpactECC)
				m.spawns = append(m.spawns, spawnPoint{x: m.safeSpawnX(hx, hy), y: hy})
				a.vx, a.vy = vx, vy
				m.terminate(a, core.StateImpact, CauseImpact)
				return
			}
			vx -= vDotN * nX
			vy -= vDotN * nY
			a.x = wx - nX*p.OceanPushOut
			a.y = wy - nY*p.OceanPushOut
		case next.Dist > 0:
			if !m.escape(a, cur) {
				m.terminate(a, core.StateStuck, CauseTrapped)
				return
			}
		default:
			a.x, a.y = nx, ny
		}
		a.vx, a.vy = vx, vy

		if m.polarExit(a, p.OceanEccPolarExitLat) {
			return
		}
		if math.Abs(m.g.LatOfRow(a.y)-m.itczAt(a.x)) > p.OceanDeflectLat {
			m.terminate(a, core.StateDead, CauseDeflected)
			return
		}
	}
	m.checkZeroSpeed(a)
}

// spawnEquatorial seeds a north and a south agent at every safe spawn point
// found by the counter currents.
func (m *monthRun) spawnEquatorial() []*agent {
	v := m.phys.OceanBaseSpeed * m.phys.OceanSpawnSpeedMult
	out := make([]*agent, 0, 2*len(m.spawns))
	for _, s := range m.spawns {
		out = append(out,
			m.newAgent(core.AgentECNorth, s.x, s.y, 0, -v),
			m.newAgent(core.AgentECSouth, s.x, s.y, 0, v),
		)
	}
	return out
}

// targetLat is the latitude an equatorial agent settles on at x.
func (m *monthRun) targetLat(a *agent) float64 {
	if a.kind == core.AgentECNorth {
		return m.itczAt(a.x) + m.gap
	}
	return m.itczAt(a.x) - m.gap
}

// stepEquatorial advances an EC agent by one macro-step. The agent is driven
// west toward its target latitude, crawls along coasts that block it and
// ends on a west coast.
func (m *monthRun) stepEquatorial(a *agent) {
	p := m.phys
	if !m.precheck(a, p.OceanEcStagnation) {
		return
	}

	for ss := 0; ss < p.OceanSubSteps; ss++ {
		target := m.targetLat(a)
		targetY := m.g.RowOfLat(target)
		latDiff := math.Abs(m.g.LatOfRow(a.y) - target)

		cur := m.field.Environment(a.x, a.y)
		nearCoast := cur.Dist > p.OceanCoastSenseKm
		blocked := nearCoast && cur.GX > p.OceanCoastFacing

		var ax, ay float64
		if blocked && latDiff > p.OceanCrawlLatDeg {
			a.state = core.StateCrawling
			ax, ay = m.crawl(a, cur, targetY)
		} else {
			a.state = core.StateActive
			ax, ay = m.drift(a, cur, targetY, nearCoast)
		}
		vx, vy := m.clampSpeed(a.vx+ax, a.vy+ay)

		nx, ny := a.x+vx*m.dt, a.y+vy*m.dt
		next := m.field.Environment(nx, ny)

		switch {
		case next.Dist > 0 && cur.Dist <= 0:
			wx, wy, hx, hy := m.bisect(a.x, a.y, nx, ny)
			hit := m.field.Environment(hx, hy)
			nX, nY, _ := hit.Normal()
			vDotN := vx*nX + vy*nY
			if vx < -p.OceanArrivalMinSpeed && nX < p.OceanCoastFacing && vDotN > p.OceanImpactThreshold {
				if m.ecArrivals%p.OceanEcImpactStride == 0 {
					m.recordImpact(hx, hy, core.ImpactEC)
				}
				m.ecArrivals++
				a.vx, a.vy = vx, vy
				if a.age < p.OceanEarlyArrivalAge {
					m.diagnose(a, core.DiagEcInfantDeath, msgEarlyArrival)
				}
				m.terminate(a, core.StateDead, CauseArrival)
				return
			}
			vx = (vx - vDotN*nX) * p.OceanSlideFriction
			vy = (vy - vDotN*nY) * p.OceanSlideFriction
			a.x = wx - nX*p.OceanPushOut
			a.y = wy - nY*p.OceanPushOut
		case next.Dist > 0:
			if !m.escape(a, cur) {
				m.terminate(a, core.StateStuck, CauseTrapped)
				return
			}
		default:
			a.x, a.y = nx, ny
		}
		a.vx, a.vy = vx, vy

		if m.polarExit(a, p.OceanEcPolarExitLat) {
			return
		}
	}
	m.checkZeroSpeed(a)
}

// crawl slides a blocked agent along the coast toward its target latitude.
func (m *monthRun) crawl(a *agent, env Env, targetY float64) (ax, ay float64) {
	p := m.phys
	nx, ny, gradLen := env.Normal()
	if gradLen <= p.OceanMinGradient {
		return 0, (targetY - a.y) * p.OceanCrawlFallbackGain
	}
	tx, ty := -ny, nx
	if ty*(targetY-a.y) < 0 {
		tx, ty = -tx, -ty
	}
	speed := p.OceanBaseSpeed * p.OceanCrawlSpeedMult
	ax = (tx*speed-a.vx)*p.OceanCrawlGain - nx*p.OceanCrawlRepulse
	ay = (ty*speed-a.vy)*p.OceanCrawlGain - ny*p.OceanCrawlRepulse
	return ax, ay
}

// drift pulls an agent westward and toward its target latitude, with a soft
// repulsion from nearby coasts.
func (m *monthRun) drift(a *agent, env Env, targetY float64, nearCoast bool) (ax, ay float64) {
	p := m.phys
	ax = (-p.OceanBaseSpeed - a.vx) * p.OceanInertiaX
	ay = (targetY-a.y)*p.OceanEcPatternForce - a.vy*p.OceanEcDamping
	if nearCoast {
		nx, ny, gradLen := env.Normal()
		if gradLen > p.OceanMinGradient {
			rep := p.OceanRepulseStrength * (1 - env.Dist/p.OceanCoastSenseKm)
			ax -= nx * rep
			ay -= ny * rep
		}
	}
	return ax, ay
}
