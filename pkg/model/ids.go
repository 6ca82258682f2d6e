package model

// Model IDs, grounded on the Bluetooth SIG Mesh Model assigned numbers used
// by the original firmware's meshx_ble_mesh_cmn_def.h.
const (
	GenOnOffSrv        uint32 = 0x1000
	GenOnOffCli        uint32 = 0x1001
	GenLevelSrv        uint32 = 0x1002
	GenLevelCli        uint32 = 0x1003
	GenDefTransTimeSrv uint32 = 0x1004
	GenDefTransTimeCli uint32 = 0x1005
	GenPowerOnOffSrv   uint32 = 0x1006
	GenPowerOnOffSetup uint32 = 0x1007
	GenPowerOnOffCli   uint32 = 0x1008
	GenPowerLevelSrv   uint32 = 0x1009
	GenPowerLevelSetup uint32 = 0x100A
	GenPowerLevelCli   uint32 = 0x100B
	GenBatterySrv      uint32 = 0x100C
	GenBatteryCli      uint32 = 0x100D
	GenLocationSrv     uint32 = 0x100E
	GenLocationSetup   uint32 = 0x100F
	GenLocationCli     uint32 = 0x1010
	GenAdminPropSrv    uint32 = 0x1011
	GenManufPropSrv    uint32 = 0x1012
	GenUserPropSrv     uint32 = 0x1013
	GenClientPropSrv   uint32 = 0x1014
	GenPropCli         uint32 = 0x1015

	LightLightnessSrv   uint32 = 0x1300
	LightLightnessSetup uint32 = 0x1301
	LightLightnessCli   uint32 = 0x1302
	LightCtlSrv         uint32 = 0x1303
	LightCtlSetup       uint32 = 0x1304
	LightCtlCli         uint32 = 0x1305
	LightCtlTempSrv     uint32 = 0x1306
	LightHslSrv         uint32 = 0x1307
	LightHslSetup       uint32 = 0x1308
	LightHslCli         uint32 = 0x1309
	LightHslHueSrv      uint32 = 0x130A
	LightHslSatSrv      uint32 = 0x130B
	LightXylSrv         uint32 = 0x130C
	LightXylSetup       uint32 = 0x130D
	LightXylCli         uint32 = 0x130E
	LightLcSrv          uint32 = 0x130F
	LightLcSetup        uint32 = 0x1310
	LightLcCli          uint32 = 0x1311
)

// GenericClientModelIDs is the family allow-list for the Generic client
// registry (§4.3.1).
var GenericClientModelIDs = map[uint32]struct{}{
	GenOnOffCli:      {},
	GenLevelCli:      {},
	GenPowerOnOffCli: {},
	GenPowerLevelCli: {},
	GenBatteryCli:    {},
	GenLocationCli:   {},
	GenPropCli:       {},
}

// GenericServerModelIDs is the family allow-list for the Generic server
// registry.
var GenericServerModelIDs = map[uint32]struct{}{
	GenOnOffSrv:        {},
	GenLevelSrv:        {},
	GenDefTransTimeSrv: {},
	GenPowerOnOffSrv:   {},
	GenPowerOnOffSetup: {},
	GenPowerLevelSrv:   {},
	GenPowerLevelSetup: {},
	GenBatterySrv:      {},
	GenLocationSrv:     {},
	GenLocationSetup:   {},
	GenAdminPropSrv:    {},
	GenManufPropSrv:    {},
	GenUserPropSrv:     {},
	GenClientPropSrv:   {},
}

// LightClientModelIDs is the family allow-list for the Light client
// registry.
var LightClientModelIDs = map[uint32]struct{}{
	LightLightnessCli: {},
	LightCtlCli:       {},
	LightHslCli:       {},
	LightXylCli:       {},
	LightLcCli:        {},
}

// LightServerModelIDs is the family allow-list for the Light server
// registry.
var LightServerModelIDs = map[uint32]struct{}{
	LightLightnessSrv:   {},
	LightLightnessSetup: {},
	LightCtlSrv:         {},
	LightCtlSetup:       {},
	LightCtlTempSrv:     {},
	LightHslSrv:         {},
	LightHslSetup:       {},
	LightHslHueSrv:      {},
	LightHslSatSrv:      {},
	LightXylSrv:         {},
	LightXylSetup:       {},
	LightLcSrv:          {},
	LightLcSetup:        {},
}

// Generic OnOff opcodes.
const (
	OpGenOnOffGet       uint32 = 0x8201
	OpGenOnOffSet       uint32 = 0x8202
	OpGenOnOffSetUnack  uint32 = 0x8203
	OpGenOnOffStatus    uint32 = 0x8204
)

// Generic Level opcodes.
const (
	OpGenLevelGet           uint32 = 0x8205
	OpGenLevelSet           uint32 = 0x8206
	OpGenLevelSetUnack      uint32 = 0x8207
	OpGenLevelStatus        uint32 = 0x8208
	OpGenDeltaSet           uint32 = 0x8209
	OpGenDeltaSetUnack      uint32 = 0x820A
	OpGenMoveSet            uint32 = 0x820B
	OpGenMoveSetUnack       uint32 = 0x820C
)

// Generic Power OnOff opcodes.
const (
	OpGenOnPowerUpGet       uint32 = 0x8211
	OpGenOnPowerUpStatus    uint32 = 0x8212
	OpGenOnPowerUpSet       uint32 = 0x8213
	OpGenOnPowerUpSetUnack  uint32 = 0x8214
)

// Generic Power Level opcodes.
const (
	OpGenPowerLevelGet          uint32 = 0x8215
	OpGenPowerLevelSet          uint32 = 0x8216
	OpGenPowerLevelSetUnack     uint32 = 0x8217
	OpGenPowerLevelStatus       uint32 = 0x8218
	OpGenPowerLastGet           uint32 = 0x8219
	OpGenPowerLastStatus        uint32 = 0x821A
	OpGenPowerDefaultGet        uint32 = 0x821B
	OpGenPowerDefaultStatus     uint32 = 0x821C
	OpGenPowerRangeGet          uint32 = 0x821D
	OpGenPowerRangeStatus       uint32 = 0x821E
	OpGenPowerDefaultSet        uint32 = 0x821F
	OpGenPowerDefaultSetUnack   uint32 = 0x8220
	OpGenPowerRangeSet          uint32 = 0x8221
	OpGenPowerRangeSetUnack     uint32 = 0x8222
)

// Generic Location opcodes (global only; local uses vendor-length opcodes
// in the original and is out of scope here).
const (
	OpGenLocGlobalGet    uint32 = 0x8225
	OpGenLocGlobalStatus uint32 = 0x40
	OpGenLocGlobalSet    uint32 = 0x41
	OpGenLocGlobalSetUnack uint32 = 0x42
)

// Generic Property opcodes.
const (
	OpGenUserPropGet       uint32 = 0x4B
	OpGenUserPropSet       uint32 = 0x4C
	OpGenUserPropSetUnack  uint32 = 0x4D
	OpGenUserPropStatus    uint32 = 0x4E
	OpGenAdminPropGet      uint32 = 0x43
	OpGenAdminPropSet      uint32 = 0x44
	OpGenAdminPropSetUnack uint32 = 0x45
	OpGenAdminPropStatus   uint32 = 0x46
)

// Light Lightness opcodes.
const (
	OpLightLightnessGet          uint32 = 0x824B
	OpLightLightnessSet          uint32 = 0x824C
	OpLightLightnessSetUnack     uint32 = 0x824D
	OpLightLightnessStatus       uint32 = 0x824E
	OpLightLightnessLinearGet    uint32 = 0x824F
	OpLightLightnessLinearSet    uint32 = 0x8250
	OpLightLightnessLinearSetUnack uint32 = 0x8251
	OpLightLightnessLinearStatus uint32 = 0x8252
	OpLightLightnessDefaultGet   uint32 = 0x8255
	OpLightLightnessDefaultStatus uint32 = 0x8256
	OpLightLightnessRangeGet     uint32 = 0x8257
	OpLightLightnessRangeStatus  uint32 = 0x8258
)

// Light CTL opcodes (§6.3 — STATUS-family payloads are bit-exact).
const (
	OpLightCtlGet                 uint32 = 0x825D
	OpLightCtlSet                 uint32 = 0x825E
	OpLightCtlSetUnack            uint32 = 0x825F
	OpLightCtlStatus              uint32 = 0x8260
	OpLightCtlTemperatureGet      uint32 = 0x8261
	OpLightCtlTemperatureRangeGet uint32 = 0x8262
	OpLightCtlTemperatureRangeStatus uint32 = 0x8263
	OpLightCtlTemperatureSet         uint32 = 0x8264
	OpLightCtlTemperatureSetUnack    uint32 = 0x8265
	OpLightCtlTemperatureStatus      uint32 = 0x8266
	OpLightCtlDefaultGet             uint32 = 0x8267
	OpLightCtlDefaultStatus          uint32 = 0x8268
	OpLightCtlDefaultSet             uint32 = 0x8269
	OpLightCtlDefaultSetUnack        uint32 = 0x826A
	OpLightCtlTemperatureRangeSet      uint32 = 0x826B
	OpLightCtlTemperatureRangeSetUnack uint32 = 0x826C
)

// Light HSL opcodes.
const (
	OpLightHslGet         uint32 = 0x826D
	OpLightHslHueGet      uint32 = 0x826E
	OpLightHslHueSet      uint32 = 0x826F
	OpLightHslHueSetUnack uint32 = 0x8270
	OpLightHslHueStatus   uint32 = 0x8271
	OpLightHslSatGet      uint32 = 0x8272
	OpLightHslSatSet      uint32 = 0x8273
	OpLightHslSatSetUnack uint32 = 0x8274
	OpLightHslSatStatus   uint32 = 0x8275
	OpLightHslSet         uint32 = 0x8276
	OpLightHslSetUnack    uint32 = 0x8277
	OpLightHslStatus      uint32 = 0x8278
	OpLightHslDefaultGet  uint32 = 0x8279
	OpLightHslDefaultStatus uint32 = 0x827A
	OpLightHslRangeGet    uint32 = 0x827B
	OpLightHslRangeStatus uint32 = 0x827C
)

// Light xyL opcodes.
const (
	OpLightXylGet            uint32 = 0x8284
	OpLightXylSet            uint32 = 0x8285
	OpLightXylSetUnack       uint32 = 0x8286
	OpLightXylStatus         uint32 = 0x8287
	OpLightXylTargetGet      uint32 = 0x8288
	OpLightXylTargetStatus   uint32 = 0x8289
	OpLightXylDefaultGet     uint32 = 0x828A
	OpLightXylDefaultStatus  uint32 = 0x828B
	OpLightXylRangeGet       uint32 = 0x828C
	OpLightXylRangeStatus    uint32 = 0x828D
)

// Light LC (Light Control) opcodes.
const (
	OpLightLcModeGet        uint32 = 0x8291
	OpLightLcModeSet        uint32 = 0x8292
	OpLightLcModeSetUnack   uint32 = 0x8293
	OpLightLcModeStatus     uint32 = 0x8294
	OpLightLcOMGet          uint32 = 0x8295
	OpLightLcOMSet          uint32 = 0x8296
	OpLightLcOMSetUnack     uint32 = 0x8297
	OpLightLcOMStatus       uint32 = 0x8298
	OpLightLcLightOnOffGet      uint32 = 0x8299
	OpLightLcLightOnOffSet      uint32 = 0x829A
	OpLightLcLightOnOffSetUnack uint32 = 0x829B
	OpLightLcLightOnOffStatus   uint32 = 0x829C
)

// GenericClass is the opcode classifier shared by all Generic models: the
// GET/SET_UNACK allow-lists span the whole family, as in the original
// meshx_is_gen_cli_get_opcode/meshx_is_unack_opcode switch statements.
var GenericClass = OpcodeClass{
	GetReq: map[uint32]struct{}{
		OpGenOnOffGet: {}, OpGenLevelGet: {}, OpGenOnPowerUpGet: {},
		OpGenPowerLevelGet: {}, OpGenPowerLastGet: {}, OpGenPowerDefaultGet: {}, OpGenPowerRangeGet: {},
		OpGenLocGlobalGet: {}, OpGenAdminPropGet: {}, OpGenUserPropGet: {},
	},
	Unack: map[uint32]struct{}{
		OpGenOnOffSetUnack: {}, OpGenLevelSetUnack: {}, OpGenDeltaSetUnack: {}, OpGenMoveSetUnack: {},
		OpGenOnPowerUpSetUnack: {}, OpGenPowerLevelSetUnack: {}, OpGenPowerDefaultSetUnack: {}, OpGenPowerRangeSetUnack: {},
		OpGenLocGlobalSetUnack: {}, OpGenAdminPropSetUnack: {}, OpGenUserPropSetUnack: {},
	},
	Status: map[uint32]struct{}{
		OpGenOnOffStatus: {}, OpGenLevelStatus: {}, OpGenOnPowerUpStatus: {},
		OpGenPowerLevelStatus: {}, OpGenPowerLastStatus: {}, OpGenPowerDefaultStatus: {}, OpGenPowerRangeStatus: {},
		OpGenLocGlobalStatus: {}, OpGenAdminPropStatus: {}, OpGenUserPropStatus: {},
	},
}

// LightClass is the opcode classifier shared by all Light models.
var LightClass = OpcodeClass{
	GetReq: map[uint32]struct{}{
		OpLightLightnessGet: {}, OpLightLightnessLinearGet: {}, OpLightLightnessDefaultGet: {}, OpLightLightnessRangeGet: {},
		OpLightCtlGet: {}, OpLightCtlTemperatureGet: {}, OpLightCtlTemperatureRangeGet: {}, OpLightCtlDefaultGet: {},
		OpLightHslGet: {}, OpLightHslHueGet: {}, OpLightHslSatGet: {}, OpLightHslDefaultGet: {}, OpLightHslRangeGet: {},
		OpLightXylGet: {}, OpLightXylTargetGet: {}, OpLightXylDefaultGet: {}, OpLightXylRangeGet: {},
		OpLightLcModeGet: {}, OpLightLcOMGet: {}, OpLightLcLightOnOffGet: {},
	},
	Unack: map[uint32]struct{}{
		OpLightLightnessSetUnack: {}, OpLightLightnessLinearSetUnack: {},
		OpLightCtlSetUnack: {}, OpLightCtlTemperatureSetUnack: {}, OpLightCtlDefaultSetUnack: {}, OpLightCtlTemperatureRangeSetUnack: {},
		OpLightHslHueSetUnack: {}, OpLightHslSatSetUnack: {}, OpLightHslSetUnack: {},
		OpLightXylSetUnack: {},
		OpLightLcModeSetUnack: {}, OpLightLcOMSetUnack: {}, OpLightLcLightOnOffSetUnack: {},
	},
	Status: map[uint32]struct{}{
		OpLightLightnessStatus: {}, OpLightLightnessLinearStatus: {}, OpLightLightnessDefaultStatus: {}, OpLightLightnessRangeStatus: {},
		OpLightCtlStatus: {}, OpLightCtlTemperatureStatus: {}, OpLightCtlDefaultStatus: {}, OpLightCtlTemperatureRangeStatus: {},
		OpLightHslStatus: {}, OpLightHslHueStatus: {}, OpLightHslSatStatus: {}, OpLightHslDefaultStatus: {}, OpLightHslRangeStatus: {},
		OpLightXylStatus: {}, OpLightXylTargetStatus: {}, OpLightXylDefaultStatus: {}, OpLightXylRangeStatus: {},
		OpLightLcModeStatus: {}, OpLightLcOMStatus: {}, OpLightLcLightOnOffStatus: {},
	},
}
