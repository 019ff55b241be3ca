package config

import (
	"os"
	"strconv"
)

const DATABASE_TYPE = "XFLOW_DATABASE_TYPE"
const DATABASE_URL = "XFLOW_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "XFLOW_DATABASE_SQLLITE_FILE_NAME"
const SERVER_WEB_PORT = "XFLOW_SERVER_WEB_PORT"
const SCHEDULER_INTERVAL = "XFLOW_SCHEDULER_INTERVAL"                 //how often the deadline scheduler scans active cases
const SCHEDULER_BATCH_SIZE = "XFLOW_SCHEDULER_BATCH_SIZE"             //number of cases pulled from the database per scan
const API_KEY_HASH = "XFLOW_API_KEY_HASH"                             //bcrypt hash of the api key required on /api routes
const IDENTIFICATION_WINDOW_DAYS = "XFLOW_IDENTIFICATION_WINDOW_DAYS" //days from exchange start to the identification deadline
const COMPLETION_WINDOW_DAYS = "XFLOW_COMPLETION_WINDOW_DAYS"         //days from exchange start to the completion deadline

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}

	return 0
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	if settingKey == SCHEDULER_INTERVAL {
		return "2m" // deadlines are day granularity, no need for tighter polling
	}
	if settingKey == SCHEDULER_BATCH_SIZE {
		return "100"
	}
	if settingKey == SERVER_WEB_PORT {
		return "8080"
	}
	if settingKey == IDENTIFICATION_WINDOW_DAYS {
		return "45"
	}
	if settingKey == COMPLETION_WINDOW_DAYS {
		return "180"
	}
	if settingKey == DATABASE_SQLLITE_FILE_NAME {
		return "./xflow.db"
	}
	return ""
}
