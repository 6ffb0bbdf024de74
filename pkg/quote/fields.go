package quote

// Field names a FormState entry. The string value doubles as the HTML input
// name and the JSON key used by the API.
type Field string

const (
	FieldQuoteType       Field = "quoteType"
	FieldName            Field = "name"
	FieldPhone           Field = "phone"
	FieldEmail           Field = "email"
	FieldBirthDate       Field = "birthDate"
	FieldTaxID           Field = "taxId"
	FieldVehicleType     Field = "vehicleType"
	FieldVehiclePlate    Field = "vehiclePlate"
	FieldVehicleCategory Field = "vehicleCategory"
	FieldVehicleValue    Field = "vehicleValue"
	FieldVehicleUsage    Field = "vehicleUsage"
	FieldPostalCode      Field = "postalCode"
	FieldStreet          Field = "street"
	FieldNeighborhood    Field = "neighborhood"
	FieldNumber          Field = "number"
	FieldComplement      Field = "complement"
	FieldState           Field = "state"
	FieldCity            Field = "city"
	FieldReferralCode    Field = "referralCode"
)

// Vehicle type values referenced by the conditional option rules.
const (
	VehicleCar        = "carro"
	VehicleMotorcycle = "moto"
	// UsageSchoolTransport is only offered for cars.
	UsageSchoolTransport = "transporte escolar"
)

// Fields lists every known field in declaration order.
var Fields = []Field{
	FieldQuoteType,
	FieldName,
	FieldPhone,
	FieldEmail,
	FieldBirthDate,
	FieldTaxID,
	FieldVehicleType,
	FieldVehiclePlate,
	FieldVehicleCategory,
	FieldVehicleValue,
	FieldVehicleUsage,
	FieldPostalCode,
	FieldStreet,
	FieldNeighborhood,
	FieldNumber,
	FieldComplement,
	FieldState,
	FieldCity,
	FieldReferralCode,
}

// messageOrder is the fixed order of the summary lines after the optional
// referral line.
var messageOrder = []Field{
	FieldQuoteType,
	FieldName,
	FieldBirthDate,
	FieldPhone,
	FieldEmail,
	FieldTaxID,
	FieldVehicleType,
	FieldVehiclePlate,
	FieldVehicleCategory,
	FieldVehicleValue,
	FieldVehicleUsage,
	FieldStreet,
	FieldNumber,
	FieldComplement,
	FieldNeighborhood,
	FieldCity,
	FieldState,
	FieldPostalCode,
}

var knownFields = func() map[Field]struct{} {
	out := make(map[Field]struct{}, len(Fields))
	for _, f := range Fields {
		out[f] = struct{}{}
	}
	return out
}()

// Known reports whether f is one of the declared fields.
func Known(f Field) bool {
	_, ok := knownFields[f]
	return ok
}
