package validators

import "go.mongodb.org/mongo-driver/bson"

var SettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"key",
			"value",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"key": bson.M{
				"bsonType": "string",
				"enum": []string{
					"base_occupancy",
					"base_rate",
					"min_hours",
					"extra_person_rate",
					"combined_threshold",
					"vat_percent",
				},
			},

			"value": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},
		},
	},
}
