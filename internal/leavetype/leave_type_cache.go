package leavetype

const ActiveLeaveTypesKey = "leave_types:active"
