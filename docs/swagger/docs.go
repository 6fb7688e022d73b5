// Package swagger holds the OpenAPI document served at /swagger.
//
// Regenerate with: swag init -g cmd/serve.go -o docs/swagger
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/bundles": {
            "get": {
                "description": "Lists the descriptors of every published bundle.",
                "produces": ["application/json"],
                "tags": ["bundles"],
                "summary": "List Bundles",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pipeline.Descriptor"}}}
                }
            }
        },
        "/bundles/rebuild": {
            "post": {
                "description": "Discovers plugins and rebuilds the bundles whose content changed.",
                "produces": ["application/json"],
                "tags": ["bundles"],
                "summary": "Rebuild Bundles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pipeline.Report"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/bundles/{owner}": {
            "get": {
                "description": "Returns the bundle descriptor of an owner. Owners whose last build failed are not available.",
                "produces": ["application/json"],
                "tags": ["bundles"],
                "summary": "Get Bundle",
                "parameters": [
                    {"type": "string", "description": "Owner id", "name": "owner", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pipeline.Descriptor"}},
                    "404": {"description": "Not available", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/structures": {
            "get": {
                "description": "Lists every structure pool with its keys and load statistics.",
                "produces": ["application/json"],
                "tags": ["structures"],
                "summary": "List Structure Pools",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/structures.PoolInfo"}}}
                }
            }
        },
        "/structures/{pool}/random": {
            "get": {
                "description": "Draws a weighted random structure. Entries that fail to load are quarantined and the draw is renormalized. An exhausted pool returns the empty structure with resolved=false.",
                "produces": ["application/json"],
                "tags": ["structures"],
                "summary": "Random Structure",
                "parameters": [
                    {"type": "string", "description": "Pool name", "name": "pool", "in": "path", "required": true},
                    {"type": "integer", "description": "Seed for a reproducible draw", "name": "seed", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/structures.RandomResponse"}},
                    "400": {"description": "Invalid seed", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Unknown pool", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/structures/{pool}/{key}": {
            "get": {
                "description": "Loads one structure of a pool by key.",
                "produces": ["application/json"],
                "tags": ["structures"],
                "summary": "Structure By Key",
                "parameters": [
                    {"type": "string", "description": "Pool name", "name": "pool", "in": "path", "required": true},
                    {"type": "string", "description": "Entry key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/structures.Schematic"}},
                    "404": {"description": "Not available", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity": {
            "get": {
                "description": "Performs all available integrity checks (Structure, Artifacts, Database).",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/artifacts": {
            "get": {
                "description": "Re-hashes every generated bundle and compares it with its build record.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Artifacts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/checks.ArtifactReport"}}
                }
            }
        },
        "/integrity/database": {
            "get": {
                "description": "Checks that the build cache table carries every column the database store writes.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Database Schema",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/checks.DatabaseReport"}},
                    "503": {"description": "Database not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/structure": {
            "get": {
                "description": "Checks if the required folder structure exists in the storage bucket. Optionally fixes missing folders.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Structure",
                "parameters": [
                    {"type": "boolean", "description": "Fix missing folders", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Structure Report", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Storage not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "checks.ArtifactReport": {
            "type": "object",
            "properties": {
                "checked": {"type": "integer"},
                "ok": {"type": "array", "items": {"type": "string"}},
                "missing": {"type": "array", "items": {"type": "string"}},
                "modified": {"type": "array", "items": {"type": "string"}},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.DatabaseReport": {
            "type": "object",
            "properties": {
                "driver": {"type": "string"},
                "table": {"type": "string"},
                "exists": {"type": "boolean"},
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "pipeline.Descriptor": {
            "type": "object",
            "properties": {
                "owner": {"type": "string"},
                "uri": {"type": "string"},
                "fingerprint": {"type": "string"},
                "cached": {"type": "boolean"},
                "builtAt": {"type": "string"}
            }
        },
        "pipeline.Report": {
            "type": "object",
            "properties": {
                "built": {"type": "array", "items": {"type": "string"}},
                "skipped": {"type": "array", "items": {"type": "string"}},
                "empty": {"type": "array", "items": {"type": "string"}},
                "failed": {"type": "object", "additionalProperties": {"type": "string"}},
                "duration": {"type": "integer"}
            }
        },
        "pool.Stats": {
            "type": "object",
            "properties": {
                "entries": {"type": "integer"},
                "loaded": {"type": "integer"},
                "broken": {"type": "integer"},
                "loads": {"type": "integer"}
            }
        },
        "structures.Block": {
            "type": "object",
            "properties": {
                "pos": {"type": "array", "items": {"type": "integer"}},
                "state": {"type": "integer"}
            }
        },
        "structures.PoolInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "owner": {"type": "string"},
                "keys": {"type": "array", "items": {"type": "string"}},
                "stats": {"$ref": "#/definitions/pool.Stats"}
            }
        },
        "structures.RandomResponse": {
            "type": "object",
            "properties": {
                "pool": {"type": "string"},
                "resolved": {"type": "boolean"},
                "structure": {"$ref": "#/definitions/structures.Schematic"}
            }
        },
        "structures.Schematic": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "size": {"type": "array", "items": {"type": "integer"}},
                "palette": {"type": "array", "items": {"type": "string"}},
                "blocks": {"type": "array", "items": {"$ref": "#/definitions/structures.Block"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Content Manager API",
	Description:      "API for plugin content bundles and weighted structure pools.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
