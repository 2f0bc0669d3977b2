package system_test

import (
	"context"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/control"
	"github.com/c-bruce/rocketsim/internal/ephem"
	"github.com/c-bruce/rocketsim/internal/integrators"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
	"github.com/c-bruce/rocketsim/internal/storage"
	"github.com/c-bruce/rocketsim/internal/system"
)

const orbitRadius = 7e6

// orbit places a small vessel on a circular orbit around a resting Earth.
func orbit(scheme string, opts ...system.Option) *system.System {
	sc, err := integrators.Scheme(scheme)
	Expect(err).NotTo(HaveOccurred())

	s := system.New("orbit", append([]system.Option{system.WithScheme(scheme, sc)}, opts...)...)
	earth := body.NewCelestialBody("Earth", ephem.EarthMass, ephem.EarthRadius, "")
	Expect(s.Current.AddCelestialBody(earth)).To(Succeed())

	sat := body.NewVessel("Sat", &body.Stage{Name: "bus", DryMass: 1000, Length: 4, Radius: 1})
	sat.SetPosition(mgl64.Vec3{orbitRadius, 0, 0})
	sat.SetVelocity(mgl64.Vec3{0, math.Sqrt(6.67430e-11 * ephem.EarthMass / orbitRadius), 0})
	Expect(s.Current.AddVessel(sat)).To(Succeed())
	return s
}

func radius(ts *system.Timestep) float64 {
	return ts.Vessels["Sat"].Position().Sub(ts.CelestialBodies["Earth"].Position()).Len()
}

var _ = Describe("System", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Timestep", func() {
		It("rejects duplicate names across body kinds", func() {
			ts := system.NewTimestep()
			Expect(ts.AddCelestialBody(body.NewCelestialBody("A", 1, 1, ""))).To(Succeed())
			Expect(ts.AddVessel(body.NewVessel("A"))).To(MatchError(system.ErrDuplicateBody))
			Expect(ts.AddCelestialBody(body.NewCelestialBody("A", 2, 1, ""))).To(MatchError(system.ErrDuplicateBody))
		})

		It("lists celestial bodies before vessels", func() {
			ts := system.NewTimestep()
			Expect(ts.AddVessel(body.NewVessel("Alpha"))).To(Succeed())
			Expect(ts.AddCelestialBody(body.NewCelestialBody("Moon", 1, 1, ""))).To(Succeed())
			Expect(ts.AddCelestialBody(body.NewCelestialBody("Earth", 1, 1, ""))).To(Succeed())
			Expect(ts.Names()).To(Equal([]string{"Earth", "Moon", "Alpha"}))

			_, err := ts.Object("Pluto")
			Expect(err).To(MatchError(system.ErrUnknownBody))
		})

		It("clones states and stages independently", func() {
			ts := system.NewTimestep()
			v := body.NewVessel("V", &body.Stage{DryMass: 1, PropellantMass: 5, Length: 1, Radius: 1})
			v.SetPosition(mgl64.Vec3{1, 2, 3})
			Expect(ts.AddVessel(v)).To(Succeed())

			c := ts.Clone()
			v.SetPosition(mgl64.Vec3{9, 9, 9})
			v.Stages[0].PropellantMass = 0

			Expect(c.Vessels["V"].Position()).To(Equal(mgl64.Vec3{1, 2, 3}))
			Expect(c.Vessels["V"].Stages[0].PropellantMass).To(Equal(5.0))
		})
	})

	Describe("Simulate", func() {
		It("validates its settings", func() {
			s := orbit("euler")
			s.SetDt(0)
			_, err := s.Simulate(ctx)
			Expect(err).To(MatchError(sim.ErrInvalidConfig))

			s = orbit("euler")
			s.Current.Time = 50
			s.SetEndTime(50)
			_, err = s.Simulate(ctx)
			Expect(err).To(MatchError(sim.ErrInvalidConfig))

			_, err = system.New("empty").Simulate(ctx)
			Expect(err).To(MatchError(system.ErrNoBodies))
		})

		It("saves every save interval starting with the initial state", func() {
			s := orbit("euler")
			s.SetDt(1)
			s.SetEndTime(10)
			s.SetSaveInterval(3)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Steps).To(Equal(10))
			Expect(summary.Saved).To(Equal(4))
			Expect(s.SortedTimesteps()).To(Equal([]int{0, 1, 2, 3}))

			for i, want := range []float64{0, 3, 6, 9} {
				Expect(s.Timesteps[i].Time).To(BeNumerically("~", want, 1e-9))
			}
			Expect(s.Current.Time).To(BeNumerically("~", 10, 1e-9))
			Expect(s.Current.Vessels["Sat"].States()).To(HaveLen(2))
		})

		It("keeps a circular orbit within one percent with the symplectic scheme", func() {
			s := orbit("symplectic", system.WithWorkers(2))
			period := 2 * math.Pi * math.Sqrt(math.Pow(orbitRadius, 3)/(6.67430e-11*ephem.EarthMass))
			s.SetDt(1)
			s.SetEndTime(math.Round(period))
			s.SetSaveInterval(60)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, k := range s.SortedTimesteps() {
				Expect(radius(s.Timesteps[k])).To(BeNumerically("~", orbitRadius, 0.01*orbitRadius))
			}
			Expect(summary.EnergyDrift).To(BeNumerically("<", 0.01))

			// One full period brings the satellite back near its start.
			back := s.Current.Vessels["Sat"].Position().Sub(s.Current.CelestialBodies["Earth"].Position())
			Expect(back.Sub(mgl64.Vec3{orbitRadius, 0, 0}).Len()).To(BeNumerically("<", 0.02*orbitRadius))
		})

		It("drifts outward with the explicit Euler scheme", func() {
			s := orbit("euler")
			s.SetDt(10)
			s.SetEndTime(6000)
			s.SetSaveInterval(100)

			_, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(radius(s.Current)).To(BeNumerically(">", orbitRadius))
		})

		It("conserves linear momentum under mutual gravity", func() {
			s := orbit("euler")
			s.SetDt(10)
			s.SetEndTime(1000)
			s.SetSaveInterval(10)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			p0 := summary.Momentum[0].Len()
			Expect(summary.Momentum[1].Sub(summary.Momentum[0]).Len()).To(BeNumerically("<", 1e-6*p0))
		})

		It("stops on a cancelled context and keeps the initial timestep", func() {
			s := orbit("euler")
			s.SetDt(1)
			s.SetEndTime(100)

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			summary, err := s.Simulate(cctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(summary.Steps).To(BeZero())
			Expect(s.Timesteps).To(HaveLen(1))
		})

		It("burns and separates stages", func() {
			s := system.New("staging")
			v := body.NewVessel("Rocket",
				&body.Stage{Name: "booster", DryMass: 100, PropellantMass: 10, Thrust: 1000, Isp: 100, Length: 5, Radius: 0.5},
				&body.Stage{Name: "upper", DryMass: 50, PropellantMass: 20, Thrust: 500, Isp: 200, Length: 3, Radius: 0.5},
			)
			v.Throttle = 1
			Expect(s.Current.AddVessel(v)).To(Succeed())
			s.SetDt(1)
			s.SetEndTime(20)

			_, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())

			got := s.Current.Vessels["Rocket"]
			Expect(got.Stages).To(HaveLen(1))
			Expect(got.ActiveStage().Name).To(Equal("upper"))
			Expect(got.ActiveStage().PropellantMass).To(BeNumerically("<", 20))
			Expect(got.Velocity()[0]).To(BeNumerically(">", 0))
			Expect(s.Timesteps[0].Vessels["Rocket"].Stages).To(HaveLen(2))
		})

		It("leaves every body at the same time when a step fails", func() {
			s := system.New("broken")
			Expect(s.Current.AddCelestialBody(body.NewCelestialBody("Rock", 1000, 1, ""))).To(Succeed())
			Expect(s.Current.AddVessel(body.NewVessel("Flat", &body.Stage{DryMass: 10}))).To(Succeed())

			_, err := s.Simulate(ctx)
			Expect(err).To(MatchError(sim.ErrInvalidMass))
			Expect(err.Error()).To(ContainSubstring("Flat"))
			Expect(s.Current.CelestialBodies["Rock"].States()).To(HaveLen(1))
			Expect(s.Current.Vessels["Flat"].States()).To(HaveLen(1))
			Expect(s.Current.Time).To(BeZero())
		})

		It("applies guidance moments to the named vessel only", func() {
			s := system.New("hold")
			v := body.NewVessel("V", &body.Stage{DryMass: 100, Length: 2, Radius: 0.5})
			v.SetAttitude(mgl64.Vec3{0.2, 0, 0})
			Expect(s.Current.AddVessel(v)).To(Succeed())

			Expect(s.SetGuidance("W", control.NewAttitudeHold(mgl64.Vec3{}, 1, 0, 0))).To(MatchError(system.ErrUnknownBody))
			Expect(s.SetGuidance("V", control.NewAttitudeHold(mgl64.Vec3{}, 10, 0, 5))).To(Succeed())

			s.SetDt(0.1)
			s.SetEndTime(1)
			_, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Current.Vessels["V"].State()[rigid.Phi]).To(BeNumerically("<", 0.2))
		})
	})

	Describe("Load", func() {
		var st *storage.Store

		BeforeEach(func() {
			dir, err := os.MkdirTemp("", "rocketsim-system")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)
			st = storage.New(dir)
			Expect(st.Init()).To(Succeed())
		})

		It("rebuilds the saved timesteps of a run", func() {
			s := orbit("euler", system.WithStore(st))
			s.SetDt(5)
			s.SetEndTime(100)
			s.SetSaveInterval(4)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.RunID).NotTo(BeEmpty())

			meta, err := st.Load(summary.RunID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.Complete).To(BeTrue())
			Expect(meta.Saved).To(Equal(6))
			Expect(meta.Metrics).To(HaveKey("energy_drift"))

			loaded, err := system.Load(st, summary.RunID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Timesteps).To(HaveLen(6))
			Expect(loaded.Dt()).To(Equal(5.0))
			Expect(loaded.SaveInterval()).To(Equal(4))

			for k, ts := range s.Timesteps {
				got := loaded.Timesteps[k]
				Expect(got.Time).To(Equal(ts.Time))
				Expect(got.Vessels["Sat"].State()).To(Equal(ts.Vessels["Sat"].State()))
				Expect(got.CelestialBodies["Earth"].Radius).To(Equal(ephem.EarthRadius))
			}
			Expect(loaded.Current.Time).To(Equal(s.Timesteps[5].Time))
		})

		It("restores the remaining stages of a vessel", func() {
			s := system.New("staged", system.WithStore(st))
			v := body.NewVessel("Rocket",
				&body.Stage{Name: "booster", DryMass: 100, PropellantMass: 5, Thrust: 1000, Isp: 100, Length: 5, Radius: 0.5},
				&body.Stage{Name: "upper", DryMass: 50, PropellantMass: 20, Thrust: 500, Isp: 200, Length: 3, Radius: 0.5},
			)
			v.Throttle = 1
			Expect(s.Current.AddVessel(v)).To(Succeed())
			s.SetDt(1)
			s.SetEndTime(10)
			s.SetSaveInterval(5)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := system.Load(st, summary.RunID)
			Expect(err).NotTo(HaveOccurred())
			first := loaded.Timesteps[0].Vessels["Rocket"]
			last := loaded.Timesteps[2].Vessels["Rocket"]
			Expect(first.Stages).To(HaveLen(2))
			Expect(first.ActiveStage().PropellantMass).To(Equal(5.0))
			Expect(last.Stages).To(HaveLen(1))
			Expect(last.ActiveStage().Name).To(Equal("upper"))
			Expect(last.ActiveStage().PropellantMass).To(Equal(s.Timesteps[2].Vessels["Rocket"].ActiveStage().PropellantMass))
		})

		It("resumes a run with its saved scheme", func() {
			s := orbit("symplectic", system.WithStore(st))
			s.SetDt(5)
			s.SetEndTime(10)

			summary, err := s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := system.Load(st, summary.RunID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.SchemeName()).To(Equal("symplectic"))
			Expect(loaded.Current.Time).To(Equal(10.0))

			loaded.SetEndTime(30)
			Expect(loaded.Steps()).To(Equal(4))
			s.SetEndTime(30)

			_, err = loaded.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())

			got := loaded.Current.Vessels["Sat"].Position()
			want := s.Current.Vessels["Sat"].Position()
			Expect(got.Sub(want).Len()).To(BeNumerically("<", 1e-3))
			Expect(loaded.Current.Time).To(Equal(30.0))
		})

		It("keeps the inertia of a saved rigid body", func() {
			mp := rigid.MassProperties{Mass: 10, Ix: 1, Iy: 2, Iz: 3}
			x0 := make(sim.State, rigid.StateDim)
			x1 := make(sim.State, rigid.StateDim)
			x1[rigid.PhiDot] = 0.5
			result := &sim.Result{
				States:     []sim.State{x0, x1},
				Controls:   []sim.Control{{0, 0, 0, 0.5, 0, 0}},
				Times:      []float64{0, 1},
				StepsTaken: 1,
			}
			meta := &storage.RunMetadata{Name: "box", Dt: 1, EndTime: 1, SaveInterval: 1, Scheme: "rk4"}
			id, err := st.SaveResult(meta, "Box", mp, result)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := system.Load(st, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.SchemeName()).To(Equal("euler"))

			box := loaded.Current.CelestialBodies["Box"]
			Expect(box.Kind()).To(Equal(body.KindRigid))
			Expect(box.MassProperties()).To(Equal(mp))

			loaded.SetEndTime(3)
			_, err = loaded.Simulate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Current.CelestialBodies["Box"].State()[rigid.Phi]).To(BeNumerically("~", 1.0, 1e-12))
			Expect(loaded.Bodies[0].Kind).To(Equal(body.KindRigid))
		})

		It("reports unknown runs", func() {
			_, err := system.Load(st, "missing")
			Expect(err).To(MatchError(storage.ErrRunNotFound))
		})
	})
})
