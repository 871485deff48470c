package utils

import "time"

//EnterKey is the key code returned by the preview window's WaitKey when Enter is pressed. It ends the live loop.
const EnterKey = 13

//DefaultFPS is the rate at which the capture goroutine polls the camera
const DefaultFPS = 30

//DefaultPollInterval is the time between two reads of the capture goroutine
const DefaultPollInterval = time.Second / DefaultFPS

//CaptureBufferSize is the number of frames the capture device may hold before it starts dropping them
const CaptureBufferSize = 2

//ReleaseMode is the log/server mode which switches to production logging
const ReleaseMode = "release"
