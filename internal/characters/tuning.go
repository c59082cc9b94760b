package characters

import "time"

const (
	Gravity     = 0.15 // velocity gained per Update while falling
	MaxVelocity = 8.0  // fall speed cap

	ChickHatchDelay     = 600 * time.Millisecond
	ChickJumpHeight     = 40.0
	ChickJumpDuration   = 350 * time.Millisecond
	ChickBounceDuration = 700 * time.Millisecond
	ChickStride         = 60.0
	ChickWalkDuration   = 900 * time.Millisecond
	ChickPause          = 500 * time.Millisecond
	ChickMaxWalks       = 4

	EggFallDuration  = 1800 * time.Millisecond
	EggHatchDelay    = 800 * time.Millisecond
	EggSplatDuration = 400 * time.Millisecond
	EggSpin          = 720.0 // two full turns while falling

	HenLayInterval = 2 * time.Second
	HenLayDuration = 300 * time.Millisecond
	HenStroll      = 120.0
	HenStrollTime  = time.Second

	ChefRange    = 240.0
	ChefWalkTime = 1600 * time.Millisecond
	ChefPause    = 400 * time.Millisecond

	PointsValue    = 10
	PointsRise     = 40.0
	PointsDuration = 600 * time.Millisecond

	CatchWidth  = 80.0
	CatchHeight = 40.0
)
