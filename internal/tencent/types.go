package tencent

// User is a meeting host or invitee reference.
type User struct {
	UserID      string `json:"userid"`
	IsAnonymous *bool  `json:"is_anonymous,omitempty"`
	NickName    *string `json:"nick_name,omitempty"`
}

// MeetingSettings mirrors the upstream meeting-settings object. All fields
// are optional and must be omitted from JSON when unset — the upstream
// validator rejects explicit nulls for these.
type MeetingSettings struct {
	MuteEnableJoin              *bool `json:"mute_enable_join,omitempty"`
	MuteEnableTypeJoin          *int  `json:"mute_enable_type_join,omitempty"`
	AllowUnmuteSelf             *bool `json:"allow_unmute_self,omitempty"`
	AllowInBeforeHost           *bool `json:"allow_in_before_host,omitempty"`
	AutoInWaitingRoom           *bool `json:"auto_in_waiting_room,omitempty"`
	AllowScreenSharedWatermark  *bool `json:"allow_screen_shared_watermark,omitempty"`
	WaterMarkType               *int  `json:"water_mark_type,omitempty"`
	OnlyEnterpriseUserAllowed   *bool `json:"only_enterprise_user_allowed,omitempty"`
	OnlyUserJoinType            *int  `json:"only_user_join_type,omitempty"`
	AutoRecordType              *string `json:"auto_record_type,omitempty"`
	ParticipantJoinAutoRecord   *bool `json:"participant_join_auto_record,omitempty"`
	EnableHostPauseAutoRecord   *bool `json:"enable_host_pause_auto_record,omitempty"`
	AllowMultiDevice            *bool `json:"allow_multi_device,omitempty"`
	ChangeNickname              *bool `json:"change_nickname,omitempty"`
	PlayIvrOnLeave              *bool `json:"play_ivr_on_leave,omitempty"`
	PlayIvrOnJoin               *bool `json:"play_ivr_on_join,omitempty"`
}

// CreateMeetingRequest is the body of a CreateMeeting call. The wire key
// for "Type" is the reserved word "type"; the Go field is named Type with
// an explicit json tag rather than renaming the concept on the wire.
type CreateMeetingRequest struct {
	UserID       string           `json:"userid" validate:"required"`
	InstanceID   int              `json:"instanceid"`
	Subject      string           `json:"subject" validate:"required"`
	Type         int              `json:"type"`
	Hosts        []User           `json:"hosts,omitempty"`
	Invitees     []User           `json:"invitees,omitempty"`
	StartTime    string           `json:"start_time" validate:"required"`
	EndTime      string           `json:"end_time" validate:"required"`
	Password     string           `json:"password,omitempty"`
	Settings     *MeetingSettings `json:"settings,omitempty"`
	Location     string           `json:"location,omitempty"`
	TimeZone     string           `json:"time_zone,omitempty"`
}

// MeetingInfo is one entry of a CreateMeeting response's meeting_info_list.
type MeetingInfo struct {
	Subject   string `json:"subject"`
	MeetingID string `json:"meeting_id"`
	MeetingCode string `json:"meeting_code"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	JoinURL   string `json:"join_url"`
}

// CreateMeetingResponse is the decoded response body of CreateMeeting.
// Per UpstreamShape leniency, an empty MeetingInfoList is not itself an
// error — see internal/submission.
type CreateMeetingResponse struct {
	MeetingNumber   int           `json:"meeting_number"`
	MeetingInfoList []MeetingInfo `json:"meeting_info_list"`
}

// CancelMeetingRequest is the body of a CancelMeeting call.
type CancelMeetingRequest struct {
	UserID       string `json:"userid"`
	InstanceID   int    `json:"instanceid"`
	ReasonCode   int    `json:"reason_code"`
	ReasonDetail string `json:"reason_detail,omitempty"`
}

// BookRoomsRequest is the body of a BookRooms call.
type BookRoomsRequest struct {
	OperatorID        string   `json:"operator_id"`
	OperatorIDType    int      `json:"operator_id_type"`
	MeetingRoomIDList []string `json:"meeting_room_id_list"`
	SubjectVisible    *bool    `json:"subject_visible,omitempty"`
}

// ReleaseRoomsRequest is the body of a ReleaseRooms call — the same shape
// as BookRoomsRequest minus subject_visible.
type ReleaseRoomsRequest struct {
	OperatorID        string   `json:"operator_id"`
	OperatorIDType    int      `json:"operator_id_type"`
	MeetingRoomIDList []string `json:"meeting_room_id_list"`
}

// MeetingRoomItem is one room descriptor returned by ListRooms.
type MeetingRoomItem struct {
	MeetingRoomID       string `json:"meeting_room_id"`
	MeetingRoomName     string `json:"meeting_room_name"`
	MeetingRoomLocation string `json:"meeting_room_location"`
	AccountNewType      int    `json:"account_new_type"`
	AccountType         int    `json:"account_type"`
	ActiveCode          string `json:"active_code"`
	ParticipantNumber   int    `json:"participant_number"`
	MeetingRoomStatus   int    `json:"meeting_room_status"`
	ScheduledStatus     int    `json:"scheduled_status"`
	IsAllowCall         bool   `json:"is_allow_call"`
}

// MeetingRoomsResponse is the decoded response body of ListRooms.
type MeetingRoomsResponse struct {
	TotalCount      int               `json:"total_count"`
	CurrentSize     int               `json:"current_size"`
	CurrentPage     int               `json:"current_page"`
	TotalPage       int               `json:"total_page"`
	MeetingRoomList []MeetingRoomItem `json:"meeting_room_list"`
}
