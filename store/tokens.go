package store

import "rov-go/types"

// The token keys below are byte-exact with the wire protocol's string IDs;
// they are shared between the local store and the surface peer.
var (
	SystemInfo  = NewToken[types.SystemInfo]("robot.system_info")
	Cameras     = NewToken[[]types.Camera]("robot.cameras")
	MotorsArmed = NewToken[types.Armed]("robot.motors.armed")
	MotorsSpeed = NewToken[map[types.MotorID]types.MotorFrame]("robot.motors.speed")

	MovementJoystick   = NewToken[types.Movement]("robot.movement.joystick")
	MovementAI         = NewToken[types.Movement]("robot.movement.ai")
	MovementDepth      = NewToken[types.Movement]("robot.movement.depth")
	MovementLeveling   = NewToken[types.Movement]("robot.movement.leveling")
	MovementCalculated = NewToken[types.Movement]("robot.movement.calculated")

	SensorsDepth    = NewToken[types.DepthFrame]("robot.sensors.depth")
	SensorsInertial = NewToken[types.ImuFrame]("robot.sensors.inertial")
	SensorsMag      = NewToken[types.MagFrame]("robot.sensors.mag")
	SensorsFusion   = NewToken[types.Orientation]("robot.sensors.fusion")

	AIDepthTarget = NewToken[types.DepthControlMode]("robot.ai.depth_target")
	Status        = NewToken[types.Status]("robot.status")
	Leak          = NewToken[bool]("robot.leak")

	DepthPIDOverride    = NewToken[PIDGains]("robot.pid.depth_override")
	LevelingPIDOverride = NewToken[PIDGains]("robot.pid.leveling_override")
)

// PIDGains is the runtime-tunable replacement for a control loop's
// compiled-in gains, published through *_PID_OVERRIDE tokens.
type PIDGains struct {
	Kp          float64 `json:"kp"`
	Ki          float64 `json:"ki"`
	Kd          float64 `json:"kd"`
	MaxIntegral float64 `json:"max_integral"`
}

// init registers every token's wire codec. Timestamped covers the values
// the mixer and arming gate judge against MAX_UPDATE_AGE; everything else
// round-trips plain, staleness (if any) being judged from Store's own
// arrival time rather than a wire-carried instant.
func init() {
	RegisterPlain(SystemInfo)
	RegisterPlain(Cameras)
	RegisterTimestamped(MotorsArmed)
	RegisterPlain(MotorsSpeed)

	RegisterTimestamped(MovementJoystick)
	RegisterTimestamped(MovementAI)
	RegisterTimestamped(MovementDepth)
	RegisterTimestamped(MovementLeveling)
	RegisterPlain(MovementCalculated)

	RegisterPlain(SensorsDepth)
	RegisterPlain(SensorsInertial)
	RegisterPlain(SensorsMag)
	RegisterPlain(SensorsFusion)

	RegisterPlain(AIDepthTarget)
	RegisterPlain(Status)
	RegisterPlain(Leak)

	RegisterPlain(DepthPIDOverride)
	RegisterPlain(LevelingPIDOverride)
}
