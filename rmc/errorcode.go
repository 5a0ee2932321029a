// Package rmc implements the RMC request/response frame codec and
// dispatcher layered above PRUDP DATA payloads.
package rmc

import "fmt"

// ErrorCode is a 32-bit RMC error code: high 16 bits are a domain id,
// low 16 bits a domain-local index. These numeric values are fixed by
// the domain and must be preserved verbatim for wire compatibility.
type ErrorCode uint32

// Error satisfies the error interface so an ErrorCode can be returned
// directly from a protocol handler.
func (e ErrorCode) Error() string {
	return fmt.Sprintf("0x%08X", uint32(e))
}

const (
	Core_Unknown               ErrorCode = 0x00010001
	Core_NotImplemented        ErrorCode = 0x00010002
	Core_InvalidPointer        ErrorCode = 0x00010003
	Core_OperationAborted      ErrorCode = 0x00010004
	Core_Exception             ErrorCode = 0x00010005
	Core_AccessDenied          ErrorCode = 0x00010006
	Core_InvalidHandle         ErrorCode = 0x00010007
	Core_InvalidIndex          ErrorCode = 0x00010008
	Core_OutOfMemory           ErrorCode = 0x00010009
	Core_InvalidArgument       ErrorCode = 0x0001000A
	Core_Timeout               ErrorCode = 0x0001000B
	Core_InitializationFailure ErrorCode = 0x0001000C
	Core_CallInitiationFailure ErrorCode = 0x0001000D
	Core_RegistrationError     ErrorCode = 0x0001000E
	Core_BufferOverflow        ErrorCode = 0x0001000F
	Core_InvalidLockState      ErrorCode = 0x00010010
	Core_InvalidSequence       ErrorCode = 0x00010011
	Core_SystemError           ErrorCode = 0x00010012
	Core_Cancelled             ErrorCode = 0x00010013

	DDL_InvalidSignature ErrorCode = 0x00020001
	DDL_IncorrectVersion ErrorCode = 0x00020002

	RendezVous_ConnectionFailure                        ErrorCode = 0x00030001
	RendezVous_NotAuthenticated                         ErrorCode = 0x00030002
	RendezVous_InvalidUsername                          ErrorCode = 0x00030064
	RendezVous_InvalidPassword                          ErrorCode = 0x00030065
	RendezVous_UsernameAlreadyExists                    ErrorCode = 0x00030066
	RendezVous_AccountDisabled                          ErrorCode = 0x00030067
	RendezVous_AccountExpired                           ErrorCode = 0x00030068
	RendezVous_ConcurrentLoginDenied                    ErrorCode = 0x00030069
	RendezVous_EncryptionFailure                        ErrorCode = 0x0003006A
	RendezVous_InvalidPID                               ErrorCode = 0x0003006B
	RendezVous_MaxConnectionsReached                    ErrorCode = 0x0003006C
	RendezVous_InvalidGID                               ErrorCode = 0x0003006D
	RendezVous_InvalidControlScriptID                   ErrorCode = 0x0003006E
	RendezVous_InvalidOperationInLiveEnvironment        ErrorCode = 0x0003006F
	RendezVous_DuplicateEntry                           ErrorCode = 0x00030070
	RendezVous_ControlScriptFailure                     ErrorCode = 0x00030071
	RendezVous_ClassNotFound                            ErrorCode = 0x00030072
	RendezVous_SessionVoid                              ErrorCode = 0x00030073
	RendezVous_DDLMismatch                              ErrorCode = 0x00030075
	RendezVous_InvalidConfiguration                     ErrorCode = 0x00030076
	RendezVous_SessionFull                              ErrorCode = 0x000300C8
	RendezVous_InvalidGatheringPassword                 ErrorCode = 0x000300C9
	RendezVous_WithoutParticipationPeriod               ErrorCode = 0x000300CA
	RendezVous_PersistentGatheringCreationMax           ErrorCode = 0x000300CB
	RendezVous_PersistentGatheringParticipationMax      ErrorCode = 0x000300CC
	RendezVous_DeniedByParticipants                     ErrorCode = 0x000300CD
	RendezVous_ParticipantInBlackList                   ErrorCode = 0x000300CE
	RendezVous_GameServerMaintenance                    ErrorCode = 0x000300CF
	RendezVous_OperationPostpone                        ErrorCode = 0x000300D0
	RendezVous_OutOfRatingRange                         ErrorCode = 0x000300D1
	RendezVous_ConnectionDisconnected                   ErrorCode = 0x000300D2
	RendezVous_InvalidOperation                         ErrorCode = 0x000300D3
	RendezVous_NotParticipatedGathering                 ErrorCode = 0x000300D4
	RendezVous_MatchmakeSessionUserPasswordUnmatch      ErrorCode = 0x000300D5
	RendezVous_MatchmakeSessionSystemPasswordUnmatch    ErrorCode = 0x000300D6
	RendezVous_UserIsOffline                            ErrorCode = 0x000300D7
	RendezVous_AlreadyParticipatedGathering             ErrorCode = 0x000300D8
	RendezVous_PermissionDenied                         ErrorCode = 0x000300D9
	RendezVous_NotFriend                                ErrorCode = 0x000300DA
	RendezVous_SessionClosed                            ErrorCode = 0x000300DB
	RendezVous_DatabaseTemporarilyUnavailable           ErrorCode = 0x000300DC
	RendezVous_InvalidUniqueId                          ErrorCode = 0x000300DD
	RendezVous_MatchmakingWithdrawn                     ErrorCode = 0x000300DE
	RendezVous_LimitExceeded                            ErrorCode = 0x000300DF
	RendezVous_AccountTemporarilyDisabled               ErrorCode = 0x000300E0
	RendezVous_PartiallyServiceClosed                   ErrorCode = 0x000300E1
	RendezVous_ConnectionDisconnectedForConcurrentLogin ErrorCode = 0x000300E2

	PythonCore_Exception        ErrorCode = 0x00040001
	PythonCore_TypeError        ErrorCode = 0x00040002
	PythonCore_IndexError       ErrorCode = 0x00040003
	PythonCore_InvalidReference ErrorCode = 0x00040004
	PythonCore_CallFailure      ErrorCode = 0x00040005
	PythonCore_MemoryError      ErrorCode = 0x00040006
	PythonCore_KeyError         ErrorCode = 0x00040007
	PythonCore_OperationError   ErrorCode = 0x00040008
	PythonCore_ConversionError  ErrorCode = 0x00040009
	PythonCore_ValidationError  ErrorCode = 0x0004000A

	Transport_Unknown                       ErrorCode = 0x00050001
	Transport_ConnectionFailure             ErrorCode = 0x00050002
	Transport_InvalidUrl                    ErrorCode = 0x00050003
	Transport_InvalidKey                    ErrorCode = 0x00050004
	Transport_InvalidURLType                ErrorCode = 0x00050005
	Transport_DuplicateEndpoint             ErrorCode = 0x00050006
	Transport_IOError                       ErrorCode = 0x00050007
	Transport_Timeout                       ErrorCode = 0x00050008
	Transport_ConnectionReset               ErrorCode = 0x00050009
	Transport_IncorrectRemoteAuthentication ErrorCode = 0x0005000A
	Transport_ServerRequestError            ErrorCode = 0x0005000B
	Transport_DecompressionFailure          ErrorCode = 0x0005000C
	Transport_ReliableSendBufferFullFatal   ErrorCode = 0x0005000D
	Transport_UPnPCannotInit                ErrorCode = 0x0005000E
	Transport_UPnPCannotAddMapping          ErrorCode = 0x0005000F
	Transport_NatPMPCannotInit              ErrorCode = 0x00050010
	Transport_NatPMPCannotAddMapping        ErrorCode = 0x00050011
	Transport_UnsupportedNAT                ErrorCode = 0x00050013
	Transport_DnsError                      ErrorCode = 0x00050014
	Transport_ProxyError                    ErrorCode = 0x00050015
	Transport_DataRemaining                 ErrorCode = 0x00050016
	Transport_NoBuffer                      ErrorCode = 0x00050017
	Transport_NotFound                      ErrorCode = 0x00050018
	Transport_TemporaryServerError          ErrorCode = 0x00050019
	Transport_PermanentServerError          ErrorCode = 0x0005001A
	Transport_ServiceUnavailable            ErrorCode = 0x0005001B
	Transport_ReliableSendBufferFull        ErrorCode = 0x0005001C
	Transport_InvalidStation                ErrorCode = 0x0005001D
	Transport_InvalidSubStreamID            ErrorCode = 0x0005001E
	Transport_PacketBufferFull              ErrorCode = 0x0005001F
	Transport_NatTraversalError             ErrorCode = 0x00050020
	Transport_NatCheckError                 ErrorCode = 0x00050021

	DOCore_StationNotReached             ErrorCode = 0x00060001
	DOCore_TargetStationDisconnect       ErrorCode = 0x00060002
	DOCore_LocalStationLeaving           ErrorCode = 0x00060003
	DOCore_ObjectNotFound                ErrorCode = 0x00060004
	DOCore_InvalidRole                   ErrorCode = 0x00060005
	DOCore_CallTimeout                   ErrorCode = 0x00060006
	DOCore_RMCDispatchFailed             ErrorCode = 0x00060007
	DOCore_MigrationInProgress           ErrorCode = 0x00060008
	DOCore_NoAuthority                   ErrorCode = 0x00060009
	DOCore_NoTargetStationSpecified      ErrorCode = 0x0006000A
	DOCore_JoinFailed                    ErrorCode = 0x0006000B
	DOCore_JoinDenied                    ErrorCode = 0x0006000C
	DOCore_ConnectivityTestFailed        ErrorCode = 0x0006000D
	DOCore_Unknown                       ErrorCode = 0x0006000E
	DOCore_UnfreedReferences             ErrorCode = 0x0006000F
	DOCore_JobTerminationFailed          ErrorCode = 0x00060010
	DOCore_InvalidState                  ErrorCode = 0x00060011
	DOCore_FaultRecoveryFatal            ErrorCode = 0x00060012
	DOCore_FaultRecoveryJobProcessFailed ErrorCode = 0x00060013
	DOCore_StationInconsitency           ErrorCode = 0x00060014
	DOCore_AbnormalMasterState           ErrorCode = 0x00060015
	DOCore_VersionMismatch               ErrorCode = 0x00060016

	FPD_NotInitialized               ErrorCode = 0x00650000
	FPD_AlreadyInitialized           ErrorCode = 0x00650001
	FPD_NotConnected                 ErrorCode = 0x00650002
	FPD_Connected                    ErrorCode = 0x00650003
	FPD_InitializationFailure        ErrorCode = 0x00650004
	FPD_OutOfMemory                  ErrorCode = 0x00650005
	FPD_RmcFailed                    ErrorCode = 0x00650006
	FPD_InvalidArgument              ErrorCode = 0x00650007
	FPD_InvalidLocalAccountID        ErrorCode = 0x00650008
	FPD_InvalidPrincipalID           ErrorCode = 0x00650009
	FPD_InvalidLocalFriendCode       ErrorCode = 0x0065000A
	FPD_LocalAccountNotExists        ErrorCode = 0x0065000B
	FPD_LocalAccountNotLoaded        ErrorCode = 0x0065000C
	FPD_LocalAccountAlreadyLoaded    ErrorCode = 0x0065000D
	FPD_FriendAlreadyExists          ErrorCode = 0x0065000E
	FPD_FriendNotExists              ErrorCode = 0x0065000F
	FPD_FriendNumMax                 ErrorCode = 0x00650010
	FPD_NotFriend                    ErrorCode = 0x00650011
	FPD_FileIO                       ErrorCode = 0x00650012
	FPD_P2PInternetProhibited        ErrorCode = 0x00650013
	FPD_Unknown                      ErrorCode = 0x00650014
	FPD_InvalidState                 ErrorCode = 0x00650015
	FPD_AddFriendProhibited          ErrorCode = 0x00650017
	FPD_InvalidAccount               ErrorCode = 0x00650019
	FPD_BlacklistedByMe              ErrorCode = 0x0065001A
	FPD_FriendAlreadyAdded           ErrorCode = 0x0065001C
	FPD_MyFriendListLimitExceed      ErrorCode = 0x0065001D
	FPD_RequestLimitExceed           ErrorCode = 0x0065001E
	FPD_InvalidMessageID             ErrorCode = 0x0065001F
	FPD_MessageIsNotMine             ErrorCode = 0x00650020
	FPD_MessageIsNotForMe            ErrorCode = 0x00650021
	FPD_FriendRequestBlocked         ErrorCode = 0x00650022
	FPD_NotInMyFriendList            ErrorCode = 0x00650023
	FPD_FriendListedByMe             ErrorCode = 0x00650024
	FPD_NotInMyBlacklist             ErrorCode = 0x00650025
	FPD_IncompatibleAccount          ErrorCode = 0x00650026
	FPD_BlockSettingChangeNotAllowed ErrorCode = 0x00650027
	FPD_SizeLimitExceeded            ErrorCode = 0x00650028
	FPD_OperationNotAllowed          ErrorCode = 0x00650029
	FPD_NotNetworkAccount            ErrorCode = 0x0065002A
	FPD_NotificationNotFound         ErrorCode = 0x0065002B
	FPD_PreferenceNotInitialized     ErrorCode = 0x0065002C
	FPD_FriendRequestNotAllowed      ErrorCode = 0x0065002D

	Ranking_NotInitialized    ErrorCode = 0x00670001
	Ranking_InvalidArgument   ErrorCode = 0x00670002
	Ranking_RegistrationError ErrorCode = 0x00670003
	Ranking_NotFound          ErrorCode = 0x00670005
	Ranking_InvalidScore      ErrorCode = 0x00670006
	Ranking_InvalidDataSize   ErrorCode = 0x00670007
	Ranking_PermissionDenied  ErrorCode = 0x00670009
	Ranking_Unknown           ErrorCode = 0x0067000A
	Ranking_NotImplemented    ErrorCode = 0x0067000B

	Authentication_NASAuthenticateError             ErrorCode = 0x00680001
	Authentication_TokenParseError                  ErrorCode = 0x00680002
	Authentication_HttpConnectionError              ErrorCode = 0x00680003
	Authentication_HttpDNSError                     ErrorCode = 0x00680004
	Authentication_HttpGetProxySetting              ErrorCode = 0x00680005
	Authentication_TokenExpired                     ErrorCode = 0x00680006
	Authentication_ValidationFailed                 ErrorCode = 0x00680007
	Authentication_InvalidParam                     ErrorCode = 0x00680008
	Authentication_PrincipalIdUnmatched             ErrorCode = 0x00680009
	Authentication_MoveCountUnmatch                 ErrorCode = 0x0068000A
	Authentication_UnderMaintenance                 ErrorCode = 0x0068000B
	Authentication_UnsupportedVersion               ErrorCode = 0x0068000C
	Authentication_ServerVersionIsOld               ErrorCode = 0x0068000D
	Authentication_Unknown                          ErrorCode = 0x0068000E
	Authentication_ClientVersionIsOld               ErrorCode = 0x0068000F
	Authentication_AccountLibraryError              ErrorCode = 0x00680010
	Authentication_ServiceNoLongerAvailable         ErrorCode = 0x00680011
	Authentication_UnknownApplication               ErrorCode = 0x00680012
	Authentication_ApplicationVersionIsOld          ErrorCode = 0x00680013
	Authentication_OutOfService                     ErrorCode = 0x00680014
	Authentication_NetworkServiceLicenseRequired    ErrorCode = 0x00680015
	Authentication_NetworkServiceLicenseSystemError ErrorCode = 0x00680016
	Authentication_NetworkServiceLicenseError3      ErrorCode = 0x00680017
	Authentication_NetworkServiceLicenseError4      ErrorCode = 0x00680018

	DataStore_Unknown             ErrorCode = 0x00690001
	DataStore_InvalidArgument     ErrorCode = 0x00690002
	DataStore_PermissionDenied    ErrorCode = 0x00690003
	DataStore_NotFound            ErrorCode = 0x00690004
	DataStore_AlreadyLocked       ErrorCode = 0x00690005
	DataStore_UnderReviewing      ErrorCode = 0x00690006
	DataStore_Expired             ErrorCode = 0x00690007
	DataStore_InvalidCheckToken   ErrorCode = 0x00690008
	DataStore_SystemFileError     ErrorCode = 0x00690009
	DataStore_OverCapacity        ErrorCode = 0x0069000A
	DataStore_OperationNotAllowed ErrorCode = 0x0069000B
	DataStore_InvalidPassword     ErrorCode = 0x0069000C
	DataStore_ValueNotEqual       ErrorCode = 0x0069000D

	ServiceItem_Unknown                  ErrorCode = 0x006C0001
	ServiceItem_InvalidArgument          ErrorCode = 0x006C0002
	ServiceItem_EShopUnknownHttpError    ErrorCode = 0x006C0003
	ServiceItem_EShopResponseParseError  ErrorCode = 0x006C0004
	ServiceItem_NotOwned                 ErrorCode = 0x006C0005
	ServiceItem_InvalidLimitationType    ErrorCode = 0x006C0006
	ServiceItem_ConsumptionRightShortage ErrorCode = 0x006C0007

	MatchmakeReferee_Unknown                  ErrorCode = 0x006F0001
	MatchmakeReferee_InvalidArgument          ErrorCode = 0x006F0002
	MatchmakeReferee_AlreadyExists            ErrorCode = 0x006F0003
	MatchmakeReferee_NotParticipatedGathering ErrorCode = 0x006F0004
	MatchmakeReferee_NotParticipatedRound     ErrorCode = 0x006F0005
	MatchmakeReferee_StatsNotFound            ErrorCode = 0x006F0006
	MatchmakeReferee_RoundNotFound            ErrorCode = 0x006F0007
	MatchmakeReferee_RoundArbitrated          ErrorCode = 0x006F0008
	MatchmakeReferee_RoundNotArbitrated       ErrorCode = 0x006F0009

	Subscriber_Unknown          ErrorCode = 0x00700001
	Subscriber_InvalidArgument  ErrorCode = 0x00700002
	Subscriber_OverLimit        ErrorCode = 0x00700003
	Subscriber_PermissionDenied ErrorCode = 0x00700004

	Ranking2_Unknown         ErrorCode = 0x00710001
	Ranking2_InvalidArgument ErrorCode = 0x00710002
	Ranking2_InvalidScore    ErrorCode = 0x00710003

	SmartDeviceVoiceChat_Unknown                       ErrorCode = 0x00720001
	SmartDeviceVoiceChat_InvalidArgument               ErrorCode = 0x00720002
	SmartDeviceVoiceChat_InvalidResponse               ErrorCode = 0x00720003
	SmartDeviceVoiceChat_InvalidAccessToken            ErrorCode = 0x00720004
	SmartDeviceVoiceChat_Unauthorized                  ErrorCode = 0x00720005
	SmartDeviceVoiceChat_AccessError                   ErrorCode = 0x00720006
	SmartDeviceVoiceChat_UserNotFound                  ErrorCode = 0x00720007
	SmartDeviceVoiceChat_RoomNotFound                  ErrorCode = 0x00720008
	SmartDeviceVoiceChat_RoomNotActivated              ErrorCode = 0x00720009
	SmartDeviceVoiceChat_ApplicationNotSupported       ErrorCode = 0x0072000A
	SmartDeviceVoiceChat_InternalServerError           ErrorCode = 0x0072000B
	SmartDeviceVoiceChat_ServiceUnavailable            ErrorCode = 0x0072000C
	SmartDeviceVoiceChat_UnexpectedError               ErrorCode = 0x0072000D
	SmartDeviceVoiceChat_UnderMaintenance              ErrorCode = 0x0072000E
	SmartDeviceVoiceChat_ServiceNoLongerAvailable      ErrorCode = 0x0072000F
	SmartDeviceVoiceChat_AccountTemporarilyDisabled    ErrorCode = 0x00720010
	SmartDeviceVoiceChat_PermissionDenied              ErrorCode = 0x00720011
	SmartDeviceVoiceChat_NetworkServiceLicenseRequired ErrorCode = 0x00720012
	SmartDeviceVoiceChat_AccountLibraryError           ErrorCode = 0x00720013
	SmartDeviceVoiceChat_GameModeNotFound              ErrorCode = 0x00720014

	Screening_Unknown         ErrorCode = 0x00730001
	Screening_InvalidArgument ErrorCode = 0x00730002
	Screening_NotFound        ErrorCode = 0x00730003

	Custom_Unknown ErrorCode = 0x00740001

	Ess_Unknown                ErrorCode = 0x00750001
	Ess_GameSessionError       ErrorCode = 0x00750002
	Ess_GameSessionMaintenance ErrorCode = 0x00750003
)
