package protocol

import "time"

// Well-known service names.
const (
	ServiceGetModelState  = "/gazebo/get_model_state"
	ServiceResetWorld     = "/gazebo/reset_world"
	ServicePausePhysics   = "/gazebo/pause_physics"
	ServiceUnpausePhysics = "/gazebo/unpause_physics"

	ServiceGetParam = "/rosapi/get_param"
	ServiceServices = "/rosapi/services"
	ServiceGetTime  = "/rosapi/get_time"
)

// =============================================================================
// gazebo_msgs/GetModelState
// =============================================================================

// GetModelStateArgs is the GetModelState request.
type GetModelStateArgs struct {
	ModelName          string `json:"model_name"`
	RelativeEntityName string `json:"relative_entity_name"`
}

// GetModelStateValues is the GetModelState response.
type GetModelStateValues struct {
	Pose          Pose   `json:"pose"`
	Twist         Twist  `json:"twist"`
	Success       bool   `json:"success"`
	StatusMessage string `json:"status_message"`
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// Twist is geometry_msgs/Twist.
type Twist struct {
	Linear  Point `json:"linear"`
	Angular Point `json:"angular"`
}

// Point doubles as geometry_msgs/Point and Vector3.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// =============================================================================
// rosapi
// =============================================================================

// GetParamArgs is the rosapi/GetParam request.
// Default and the returned Value are JSON-encoded strings.
type GetParamArgs struct {
	Name    string `json:"name"`
	Default string `json:"default"`
}

// GetParamValues is the rosapi/GetParam response.
type GetParamValues struct {
	Value string `json:"value"`
}

// ServicesValues is the rosapi/Services response.
type ServicesValues struct {
	Services []string `json:"services"`
}

// GetTimeValues is the rosapi/GetTime response.
type GetTimeValues struct {
	Time Time `json:"time"`
}

// Time is a ROS time stamp.
type Time struct {
	Secs  int64 `json:"secs"`
	Nsecs int64 `json:"nsecs"`
}

// NewTime splits a duration since the simulation epoch into a stamp.
func NewTime(d time.Duration) Time {
	return Time{
		Secs:  int64(d / time.Second),
		Nsecs: int64(d % time.Second),
	}
}

// Duration returns the stamp as a duration since the epoch.
func (t Time) Duration() time.Duration {
	return time.Duration(t.Secs)*time.Second + time.Duration(t.Nsecs)
}

// =============================================================================
// HTTP gateway
// =============================================================================

// ParamValue is the HTTP gateway's parameter payload.
type ParamValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ErrorBody is the HTTP gateway's error payload.
type ErrorBody struct {
	Error string `json:"error"`
}
