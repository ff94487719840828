package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Classroom timetable editing, publishing and professor status toggles",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Timetables",
            "description": "Working copy editing and publish lifecycle"
        },
        {
            "name": "Published",
            "description": "Read-only published timetables and exports"
        },
        {
            "name": "Sessions",
            "description": "Professor status toggles and the admin request queue"
        },
        {
            "name": "Metrics",
            "description": "Instrumentation"
        }
    ],
    "paths": {
        "/timetables/availability": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Check a candidate placement for conflicts",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AvailabilityRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Read the working copy",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Delete a group's timetable",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/state": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Read the lifecycle state",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/versions": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "List publish history",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/versions/{version}/snapshot": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Signed link to a version's PDF snapshot",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "version",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Snapshot not available",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/cells/{day}/{slot}": {
            "put": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Place a session into a cell",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "day",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "MONDAY",
                            "TUESDAY",
                            "WEDNESDAY",
                            "THURSDAY",
                            "FRIDAY",
                            "SATURDAY",
                            "SUNDAY"
                        ]
                    },
                    {
                        "name": "slot",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 6
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SessionPayload"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Professor or room conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Remove a session or clear the cell",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "day",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "MONDAY",
                            "TUESDAY",
                            "WEDNESDAY",
                            "THURSDAY",
                            "FRIDAY",
                            "SATURDAY",
                            "SUNDAY"
                        ]
                    },
                    {
                        "name": "slot",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 6
                    },
                    {
                        "name": "sessionId",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/move": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Move or swap cells",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MoveRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "No session at source cell",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/save": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Save the working copy as draft",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/publish": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Publish the working copy",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/discard": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Drop unsaved changes",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/timetables/{year}/{group}/release": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Leave the editor",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/ReleaseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Unsaved changes",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/published/{year}/{group}": {
            "get": {
                "tags": [
                    "Published"
                ],
                "summary": "Published timetable of a group",
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not published",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/published/{year}/{group}/export": {
            "get": {
                "tags": [
                    "Published"
                ],
                "summary": "Download the published timetable",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "year",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Not published",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/snapshots/{token}": {
            "get": {
                "tags": [
                    "Published"
                ],
                "summary": "Download a publish snapshot through a signed link",
                "produces": [
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "401": {
                        "description": "Invalid or expired link",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/professors/{id}/timetable": {
            "get": {
                "tags": [
                    "Published"
                ],
                "summary": "Published sessions taught by a professor",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/sessions/{id}/status": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Cancel, reschedule or reset one of the caller's sessions",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StatusToggleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Not the session's professor",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Status changed concurrently",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/status-requests": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "List professor status requests",
                "parameters": [
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "group",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "professorId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "pending",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "pageSize",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/status-requests/{id}/acknowledge": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Acknowledge a status request",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Metrics"
                ],
                "summary": "Instrumentation summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "SessionPayload": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "subjectId": {
                    "type": "string"
                },
                "subjectName": {
                    "type": "string"
                },
                "professorId": {
                    "type": "string"
                },
                "professorName": {
                    "type": "string"
                },
                "room": {
                    "type": "string"
                },
                "classType": {
                    "type": "string",
                    "enum": [
                        "CM",
                        "TD",
                        "TP",
                        "DE",
                        "CO"
                    ]
                },
                "color": {
                    "type": "string"
                },
                "isSplit": {
                    "type": "boolean"
                },
                "splitType": {
                    "type": "string",
                    "enum": [
                        "same_time",
                        "single_group"
                    ]
                },
                "subgroup1": {
                    "type": "string"
                },
                "subgroup2": {
                    "type": "string"
                },
                "subject2Id": {
                    "type": "string"
                },
                "subject2Name": {
                    "type": "string"
                },
                "professor2Id": {
                    "type": "string"
                },
                "professor2Name": {
                    "type": "string"
                },
                "room2": {
                    "type": "string"
                },
                "classType2": {
                    "type": "string"
                },
                "isCanceled": {
                    "type": "boolean"
                },
                "isRescheduled": {
                    "type": "boolean"
                }
            },
            "required": [
                "subjectId",
                "professorId",
                "room",
                "classType"
            ]
        },
        "AvailabilityRequest": {
            "type": "object",
            "properties": {
                "year": {
                    "type": "string"
                },
                "group": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "slot": {
                    "type": "integer"
                },
                "sessionId": {
                    "type": "string"
                },
                "subjectId": {
                    "type": "string"
                },
                "professorId": {
                    "type": "string"
                },
                "room": {
                    "type": "string"
                },
                "isSplit": {
                    "type": "boolean"
                },
                "splitType": {
                    "type": "string"
                },
                "subgroup1": {
                    "type": "string"
                },
                "subgroup2": {
                    "type": "string"
                },
                "professor2Id": {
                    "type": "string"
                },
                "room2": {
                    "type": "string"
                }
            },
            "required": [
                "year",
                "group",
                "day",
                "slot",
                "subjectId",
                "professorId",
                "room"
            ]
        },
        "CellRequest": {
            "type": "object",
            "properties": {
                "day": {
                    "type": "string"
                },
                "slot": {
                    "type": "integer"
                }
            }
        },
        "MoveRequest": {
            "type": "object",
            "properties": {
                "from": {
                    "$ref": "#/definitions/CellRequest"
                },
                "to": {
                    "$ref": "#/definitions/CellRequest"
                }
            }
        },
        "ReleaseRequest": {
            "type": "object",
            "properties": {
                "resolution": {
                    "type": "string",
                    "enum": [
                        "SAVE",
                        "DISCARD"
                    ]
                }
            }
        },
        "StatusToggleRequest": {
            "type": "object",
            "properties": {
                "action": {
                    "type": "string",
                    "enum": [
                        "cancel",
                        "reschedule",
                        "reset"
                    ]
                }
            },
            "required": [
                "action"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
